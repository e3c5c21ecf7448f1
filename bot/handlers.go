/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 */

package bot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"torneos-admin/api/admin"
	"torneos-admin/api/forms"
	"torneos-admin/api/resource"
	"torneos-admin/api/search"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Torneos Admin\n")
	res.WriteString("`$resources`: lists the resources that can be managed\n")
	res.WriteString("`$list <resource> [page] [limit] [\"search\"]`: shows one page of a resource\n")
	res.WriteString("`$show <resource> <id>`: shows every field of a record\n")
	res.WriteString("`$save <resource> field=value ...`: creates a record, include id=<id> to update an existing one. Values that contain spaces need to be encased in \" (e.g. nombre=\"Zona A\")\n")
	res.WriteString("`$delete <resource> <id or \"name\">`: deletes a record. There is fuzzy matching on names, however you should try and have a close match for the best results\n")
	b.reply(session, message.ChannelID, res.String())
}

// resourcesHandler handles the $resources command with a DiscordSession interface
func (b *Bot) resourcesHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Resources:\n")
	for _, name := range b.APIPtr.Resources() {
		schema, err := b.APIPtr.Schema(name)
		if err != nil {
			continue
		}
		res.WriteString(fmt.Sprintf("- `%s` %s\n", name, schema.Title))
	}
	b.reply(session, message.ChannelID, res.String())
}

// listHandler handles the $list command with a DiscordSession interface
func (b *Bot) listHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := splitArgs(message.Content)
	if err != nil || len(args) < 2 {
		b.reply(session, message.ChannelID, "Usage: `$list <resource> [page] [limit] [\"search\"]`")
		return
	}

	q := resource.Query{}
	var numbers []int
	for _, arg := range args[2:] {
		if n, err := strconv.Atoi(arg); err == nil && len(numbers) < 2 && q.Search == "" {
			numbers = append(numbers, n)
			continue
		}
		q.Search = strings.TrimSpace(q.Search + " " + arg)
	}
	if len(numbers) > 0 {
		q.Page = numbers[0]
	}
	if len(numbers) > 1 {
		q.Limit = numbers[1]
	}

	ctx, cancel := b.commandContext()
	defer cancel()
	name := args[1]
	if err := b.APIPtr.Fetch(ctx, name, q); err != nil {
		b.logger.Warn("list failed", zap.String("resource", name), zap.Error(err))
		b.reply(session, message.ChannelID, replyError(name, err))
		return
	}

	h, _ := b.APIPtr.Resource(name)
	b.reply(session, message.ChannelID, formatPage(h))
}

// showHandler handles the $show command with a DiscordSession interface
func (b *Bot) showHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := splitArgs(message.Content)
	if err != nil || len(args) != 3 {
		b.reply(session, message.ChannelID, "Usage: `$show <resource> <id>`")
		return
	}
	name := args[1]
	id, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil || id <= 0 {
		b.reply(session, message.ChannelID, fmt.Sprintf("'%s' is not a valid id", args[2]))
		return
	}

	h, err := b.APIPtr.Resource(name)
	if err != nil {
		b.reply(session, message.ChannelID, replyError(name, err))
		return
	}
	schema, _ := b.APIPtr.Schema(name)

	ctx, cancel := b.commandContext()
	defer cancel()
	rec, err := h.GetRecord(ctx, id)
	if err != nil {
		b.logger.Warn("show failed", zap.String("resource", name), zap.Int64("id", id), zap.Error(err))
		b.reply(session, message.ChannelID, replyError(name, err))
		return
	}
	b.reply(session, message.ChannelID, formatRecord(schema, h.KeyField(), rec))
}

// saveHandler handles the $save command with a DiscordSession interface. The typed values go through a form
// controller exactly as if they had been entered in the web form
func (b *Bot) saveHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := splitArgs(message.Content)
	if err != nil || len(args) < 3 {
		b.reply(session, message.ChannelID, "Usage: `$save <resource> field=value ...`")
		return
	}
	name := args[1]
	h, err := b.APIPtr.Resource(name)
	if err != nil {
		b.reply(session, message.ChannelID, replyError(name, err))
		return
	}
	schema, _ := b.APIPtr.Schema(name)

	var events []forms.ChangeEvent
	var id int64
	for _, arg := range args[2:] {
		field, value, ok := strings.Cut(arg, "=")
		field = strings.ToLower(strings.TrimSpace(field))
		if !ok || field == "" {
			b.reply(session, message.ChannelID, fmt.Sprintf("'%s' should be written as field=value", arg))
			return
		}
		if field == h.KeyField() {
			if id, err = resource.KeyOf(value); err != nil {
				b.reply(session, message.ChannelID, fmt.Sprintf("'%s' is not a valid id", value))
				return
			}
			continue
		}
		f, known := schema.Field(field)
		if !known {
			b.reply(session, message.ChannelID, fmt.Sprintf("%s has no field '%s'", name, field))
			return
		}
		events = append(events, forms.EventFromText(field, f.Kind(), value))
	}

	ctx, cancel := b.commandContext()
	defer cancel()

	controller := forms.NewController(schema.Initial())
	if id > 0 {
		// updates start from the stored record so fields that were not typed keep their value
		seed, found := h.FindRecord(id)
		if !found {
			if seed, err = h.GetRecord(ctx, id); err != nil {
				b.reply(session, message.ChannelID, replyError(name, err))
				return
			}
		}
		controller.Open(seed)
	} else {
		controller.Open(nil)
	}
	controller.HandleChanges(events)

	saved, err := b.APIPtr.SaveRecord(ctx, name, controller.Values())
	controller.Close()
	if err != nil {
		b.logger.Info("save rejected", zap.String("resource", name), zap.Error(err))
		b.reply(session, message.ChannelID, replyError(name, err))
		return
	}

	savedID, _ := resource.KeyOf(saved[h.KeyField()])
	verb := "created"
	if id > 0 {
		verb = "updated"
	}
	b.reply(session, message.ChannelID, fmt.Sprintf("%s #%d %s", schema.Title, savedID, verb))
}

// deleteHandler handles the $delete command with a DiscordSession interface
func (b *Bot) deleteHandler(session DiscordSession, message *discordgo.MessageCreate) {
	args, err := splitArgs(message.Content)
	if err != nil || len(args) < 3 {
		b.reply(session, message.ChannelID, "Usage: `$delete <resource> <id or \"name\">`")
		return
	}
	name := args[1]
	h, err := b.APIPtr.Resource(name)
	if err != nil {
		b.reply(session, message.ChannelID, replyError(name, err))
		return
	}

	target := strings.Join(args[2:], " ")
	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		var ok bool
		if id, ok = resolveByLabel(h, target); !ok {
			b.reply(session, message.ChannelID, fmt.Sprintf("No %s matches '%s'. Use $list %s to load the records first", name, target, name))
			return
		}
	}

	ctx, cancel := b.commandContext()
	defer cancel()
	if err := b.APIPtr.DeleteRecord(ctx, name, id); err != nil {
		b.logger.Warn("delete failed", zap.String("resource", name), zap.Int64("id", id), zap.Error(err))
		b.reply(session, message.ChannelID, replyError(name, err))
		return
	}
	b.reply(session, message.ChannelID, fmt.Sprintf("%s #%d deleted", name, id))
}

// resolveByLabel finds the loaded record whose label best matches input
func resolveByLabel(h resource.Handle, input string) (int64, bool) {
	rows := h.Rows()
	ids := make([]int64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		id, err := resource.KeyOf(row[h.KeyField()])
		if err != nil || id == 0 {
			continue
		}
		label, _ := h.LabelOf(id)
		ids = append(ids, id)
		labels = append(labels, label)
	}
	i, ok := search.ResolveName(input, labels)
	if !ok {
		return 0, false
	}
	return ids[i], true
}

// formatPage renders the loaded page of a resource, one "#id label" line per record
func formatPage(h resource.Handle) string {
	meta := h.Meta()
	rows := h.Rows()

	var res strings.Builder
	if len(rows) == 0 {
		res.WriteString(fmt.Sprintf("No %s found\n", h.Name()))
	}
	for _, row := range rows {
		id, _ := resource.KeyOf(row[h.KeyField()])
		label, _ := h.LabelOf(id)
		res.WriteString(fmt.Sprintf("`#%d` %s\n", id, label))
	}

	pages := 1
	if meta.Limit > 0 && meta.Total > 0 {
		pages = int(math.Ceil(float64(meta.Total) / float64(meta.Limit)))
	}
	res.WriteString(fmt.Sprintf("Page %d of %d (%d total)", meta.Page, pages, meta.Total))
	return res.String()
}

// formatRecord renders a record field by field in form order
func formatRecord(schema forms.Schema, keyField string, rec resource.Record) string {
	var res strings.Builder
	res.WriteString(fmt.Sprintf("**%s #%s**\n", schema.Title, forms.ValueString(rec[keyField])))
	for _, f := range schema.Fields {
		base := f.Common()
		if f.Kind() == forms.KindPassword {
			continue
		}
		value := forms.ValueString(rec[base.Name])
		if value == "" {
			value = "-"
		}
		res.WriteString(fmt.Sprintf("%s: %s\n", base.Label, value))
	}
	return res.String()
}

// replyError turns an error into the message shown in the channel
func replyError(name string, err error) string {
	var verr *forms.ValidationError
	switch {
	case errors.Is(err, admin.ErrUnknownResource):
		return fmt.Sprintf("Unknown resource '%s'. Use $resources to see the valid names", name)
	case errors.As(err, &verr):
		return fmt.Sprintf("The %s record is not valid: %s", name, verr.Error())
	default:
		return fmt.Sprintf("An error occured with %s: %s", name, err)
	}
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID {
		return
	}
	if b.ChannelID != "" && message.ChannelID != b.ChannelID {
		return
	}

	// Route to appropriate handler
	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(message.Content, "$resources"):
		b.resourcesHandler(session, message)

	case startsWith(message.Content, "$list"):
		b.typing(session, message.ChannelID)
		b.listHandler(session, message)

	case startsWith(message.Content, "$show"):
		b.typing(session, message.ChannelID)
		b.showHandler(session, message)

	case startsWith(message.Content, "$save"):
		b.typing(session, message.ChannelID)
		b.saveHandler(session, message)

	case startsWith(message.Content, "$delete"):
		b.typing(session, message.ChannelID)
		b.deleteHandler(session, message)
	}
}
