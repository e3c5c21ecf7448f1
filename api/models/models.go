/* models.go
 * This file contains the records exchanged with the tournament api. Records are flat: primitive fields, optional
 * dates as YYYY-MM-DD strings and numeric foreign keys (idtorneo, idzona, idequipo...). A zero ID means the record
 * has not been created on the server yet
 */

package models

// Tournament (torneo) groups zones and matches
type Tournament struct {
	ID            int64  `json:"id,omitempty"`
	Nombre        string `json:"nombre"`
	Anio          int    `json:"anio,omitempty"`
	CodTipoTorneo int64  `json:"codtipotorneo,omitempty"` // codificador: tournament type
	FechaInicio   string `json:"fechainicio,omitempty"`
	FechaFin      string `json:"fechafin,omitempty"`
	Descripcion   string `json:"descripcion,omitempty"`
	Activo        bool   `json:"activo"`
}

func (t Tournament) Key() int64 { return t.ID }

// Zone (zona) is a group or division within a tournament
type Zone struct {
	ID            int64  `json:"id,omitempty"`
	IDTorneo      int64  `json:"idtorneo,omitempty"`
	Nombre        string `json:"nombre"`
	Abrev         string `json:"abrev,omitempty"`
	CodCantFechas int    `json:"codcantfechas,omitempty"`
	CodTipoZona   int64  `json:"codtipozona,omitempty"`
}

func (z Zone) Key() int64 { return z.ID }

// Team (equipo)
type Team struct {
	ID       int64  `json:"id,omitempty"`
	Nombre   string `json:"nombre"`
	Abrev    string `json:"abrev,omitempty"`
	Contacto string `json:"contacto,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
	Escudo   string `json:"escudo,omitempty"` // image url, upload mechanics are handled by the server
	Activo   bool   `json:"activo"`
}

func (t Team) Key() int64 { return t.ID }

// Match (partido) between two teams inside a zone
type Match struct {
	ID                int64  `json:"id,omitempty"`
	IDZona            int64  `json:"idzona,omitempty"`
	IDEquipoLocal     int64  `json:"idequipolocal,omitempty"`
	IDEquipoVisitante int64  `json:"idequipovisitante,omitempty"`
	NroFecha          int    `json:"nrofecha,omitempty"`
	Fecha             string `json:"fecha,omitempty"`
	Hora              string `json:"hora,omitempty"`
	GolesLocal        *int   `json:"goleslocal,omitempty"`
	GolesVisitante    *int   `json:"golesvisitante,omitempty"`
	CodEstado         int64  `json:"codestado,omitempty"`
	Cancha            string `json:"cancha,omitempty"`
}

func (m Match) Key() int64 { return m.ID }

// Player (jugador) belongs to a team
type Player struct {
	ID              int64  `json:"id,omitempty"`
	IDEquipo        int64  `json:"idequipo,omitempty"`
	Nombre          string `json:"nombre"`
	Apellido        string `json:"apellido"`
	DNI             string `json:"dni,omitempty"`
	FechaNacimiento string `json:"fechanacimiento,omitempty"`
	Email           string `json:"email,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
	Foto            string `json:"foto,omitempty"`
}

func (p Player) Key() int64 { return p.ID }

// User of the admin console
type User struct {
	ID       int64  `json:"id,omitempty" bson:"id,omitempty"`
	Username string `json:"username" bson:"username"`
	Nombre   string `json:"nombre,omitempty" bson:"nombre,omitempty"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	Rol      string `json:"rol,omitempty" bson:"rol,omitempty"`
	Password string `json:"password,omitempty" bson:"-"` // write only, never returned by the api
	Activo   bool   `json:"activo" bson:"activo"`
}

func (u User) Key() int64 { return u.ID }

// Provider (proveedor) of services paid from a payment sheet
type Provider struct {
	ID       int64  `json:"id,omitempty"`
	Nombre   string `json:"nombre"`
	CUIT     string `json:"cuit,omitempty"`
	Rubro    string `json:"rubro,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (p Provider) Key() int64 { return p.ID }

// PaymentSheet (planilla de pago) reconciles cash for a match day. Amounts are stored as sent, totals are the
// server's concern
type PaymentSheet struct {
	ID            int64   `json:"id,omitempty"`
	IDTorneo      int64   `json:"idtorneo,omitempty"`
	IDZona        int64   `json:"idzona,omitempty"`
	IDPartido     int64   `json:"idpartido,omitempty"`
	IDProveedor   int64   `json:"idproveedor,omitempty"`
	Fecha         string  `json:"fecha,omitempty"`
	Monto         float64 `json:"monto"`
	CodTurno      int64   `json:"codturno,omitempty"` // codificador: shift type
	Observaciones string  `json:"observaciones,omitempty"`
	Cerrada       bool    `json:"cerrada"`
}

func (p PaymentSheet) Key() int64 { return p.ID }

// Consent (consentimiento) signed by a player
type Consent struct {
	ID         int64  `json:"id,omitempty"`
	IDJugador  int64  `json:"idjugador,omitempty"`
	FechaFirma string `json:"fechafirma,omitempty"`
	Aceptado   bool   `json:"aceptado"`
	Archivo    string `json:"archivo,omitempty"`
}

func (c Consent) Key() int64 { return c.ID }

// Image attached to a tournament
type Image struct {
	ID          int64  `json:"id,omitempty"`
	IDTorneo    int64  `json:"idtorneo,omitempty"`
	URL         string `json:"url"`
	Descripcion string `json:"descripcion,omitempty"`
	Orden       int    `json:"orden,omitempty"`
}

func (i Image) Key() int64 { return i.ID }

// Registration (inscripcion) of a team into a tournament
type Registration struct {
	ID               int64  `json:"id,omitempty"`
	IDTorneo         int64  `json:"idtorneo,omitempty"`
	IDEquipo         int64  `json:"idequipo,omitempty"`
	NombreEquipo     string `json:"nombreequipo,omitempty"`
	Contacto         string `json:"contacto,omitempty"`
	Email            string `json:"email,omitempty"`
	Telefono         string `json:"telefono,omitempty"`
	FechaInscripcion string `json:"fechainscripcion,omitempty"`
	Estado           string `json:"estado,omitempty"`
}

func (r Registration) Key() int64 { return r.ID }

// Code (codificador) is the generic lookup table used for coded fields: shift types, tournament types, states...
type Code struct {
	ID          int64  `json:"id,omitempty"`
	Numero      int64  `json:"numero"` // groups the codes, e.g. every tournament type shares one numero
	Descripcion string `json:"descripcion"`
	Habilitado  bool   `json:"habilitado"`
}

func (c Code) Key() int64 { return c.ID }
