/* resources.go
 * Contains the resource registry: one slice per api resource with the envelope keys its endpoints use and the label
 * shown in tables, selects and search results
 */

package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"torneos-admin/api/models"
	"torneos-admin/api/resource"
	"torneos-admin/api/store"

	"go.uber.org/zap"
)

// snapshotTimeout bounds the write of a snapshot after a fetch
const snapshotTimeout = 5 * time.Second

func (a *API) registerResources() {
	register(a, resource.Definition[models.Tournament]{
		Name: "torneos", Path: "/api/torneos", ListKey: "torneos", ItemKey: "torneo",
		Label: func(t models.Tournament) string { return t.Nombre },
	})
	register(a, resource.Definition[models.Zone]{
		Name: "zonas", Path: "/api/zonas", ListKey: "zonas", ItemKey: "zona",
		Label: func(z models.Zone) string { return z.Nombre },
	})
	register(a, resource.Definition[models.Team]{
		Name: "equipos", Path: "/api/equipos", ListKey: "equipos", ItemKey: "equipo",
		Label: func(t models.Team) string { return t.Nombre },
	})
	register(a, resource.Definition[models.Match]{
		Name: "partidos", Path: "/api/partidos", ListKey: "partidos", ItemKey: "partido",
		Label: a.matchLabel,
	})
	register(a, resource.Definition[models.Player]{
		Name: "jugadores", Path: "/api/jugadores", ListKey: "jugadores", ItemKey: "jugador",
		Label: func(p models.Player) string { return strings.TrimSpace(p.Apellido + ", " + p.Nombre) },
	})
	register(a, resource.Definition[models.User]{
		Name: "usuarios", Path: "/api/usuarios", ListKey: "usuarios", ItemKey: "usuario",
		Label: func(u models.User) string { return u.Username },
	})
	register(a, resource.Definition[models.Provider]{
		Name: "proveedores", Path: "/api/proveedores", ListKey: "proveedores", ItemKey: "proveedor",
		Label: func(p models.Provider) string { return p.Nombre },
	})
	register(a, resource.Definition[models.PaymentSheet]{
		Name: "planillas", Path: "/api/planillas", ListKey: "planillas", ItemKey: "planilla",
		Label: func(p models.PaymentSheet) string { return fmt.Sprintf("%s $%.2f", p.Fecha, p.Monto) },
	})
	register(a, resource.Definition[models.Consent]{
		Name: "consentimientos", Path: "/api/consentimientos", ListKey: "consentimientos", ItemKey: "consentimiento",
		Label: func(c models.Consent) string { return fmt.Sprintf("#%d %s", c.IDJugador, c.FechaFirma) },
	})
	register(a, resource.Definition[models.Image]{
		Name: "imagenes", Path: "/api/imagenes", ListKey: "imagenes", ItemKey: "imagen",
		Label: func(i models.Image) string { return i.URL },
	})
	register(a, resource.Definition[models.Registration]{
		Name: "inscripciones", Path: "/api/inscripciones", ListKey: "inscripciones", ItemKey: "inscripcion",
		Label: func(r models.Registration) string { return r.NombreEquipo },
	})
	register(a, resource.Definition[models.Code]{
		Name: "codificadores", Path: "/api/codificadores", ListKey: "codificadores", ItemKey: "codificador",
		Label: func(c models.Code) string { return c.Descripcion },
	})
}

// register creates the slice for def and persists a snapshot of its list after every successful fetch
func register[T resource.Keyed](a *API, def resource.Definition[T]) *resource.Slice[T] {
	slice := resource.New[T](a.Admin, def, a.logger)
	if a.Store != nil {
		slice.OnFetched(func(resource.State[T]) {
			a.persistSnapshot(slice)
		})
	}
	a.handles[def.Name] = slice
	a.order = append(a.order, def.Name)
	return slice
}

func (a *API) persistSnapshot(h resource.Handle) {
	items, meta, err := h.Snapshot()
	if err != nil {
		a.logger.Warn("snapshot encode failed", zap.String("resource", h.Name()), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	err = a.Store.StoreSnapshot(ctx, store.Snapshot{
		Resource:  h.Name(),
		Items:     items,
		Total:     meta.Total,
		Page:      meta.Page,
		Limit:     meta.Limit,
		FetchedAt: meta.FetchedAt,
	})
	if err != nil {
		a.logger.Warn("snapshot store failed", zap.String("resource", h.Name()), zap.Error(err))
	}
}

// restoreSnapshots warms every slice with its stored list. Expired or missing snapshots are skipped
func (a *API) restoreSnapshots(ctx context.Context) {
	if a.Store == nil {
		return
	}
	for _, name := range a.order {
		snap, err := a.Store.FetchSnapshot(ctx, name)
		if err != nil {
			a.logger.Debug("snapshot not restored", zap.String("resource", name), zap.Error(err))
			continue
		}
		meta := resource.Meta{Total: snap.Total, Page: snap.Page, Limit: snap.Limit, FetchedAt: snap.FetchedAt}
		if err := a.handles[name].Restore(snap.Items, meta); err != nil {
			a.logger.Warn("snapshot restore failed", zap.String("resource", name), zap.Error(err))
		}
	}
}

// matchLabel names a match by its teams when they are loaded
func (a *API) matchLabel(m models.Match) string {
	local, visitor := a.teamName(m.IDEquipoLocal), a.teamName(m.IDEquipoVisitante)
	label := fmt.Sprintf("%s vs %s", local, visitor)
	if m.Fecha != "" {
		label += " (" + m.Fecha + ")"
	}
	return label
}

func (a *API) teamName(id int64) string {
	if h, ok := a.handles["equipos"]; ok {
		if name, ok := h.LabelOf(id); ok && name != "" {
			return name
		}
	}
	return fmt.Sprintf("#%d", id)
}
