package conversation

import (
	"bytes"
	"dashgate/internal/models"
	"dashgate/internal/providers"
	"dashgate/internal/structures"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const unreadableMessage = "This message could not be displayed"

var (
	contentFields   = []string{"msg", "content", "message"}
	timestampFields = []string{"gmtCreated", "created_at", "time"}
	senderFields    = []string{"userNickFrom", "sender", "role"}
	typeFields      = []string{"type"}
)

// Normalizer turns the /detail payload, whatever shape the backend used,
// into an ordered transcript.
type Normalizer struct {
	sellerIndicators []string
	productLinkTypes map[string]struct{}
	productPrefixes  []string
	logger           providers.Logger
}

func NewNormalizer(conf *structures.Config, logger providers.Logger) *Normalizer {
	n := &Normalizer{
		productLinkTypes: make(map[string]struct{}, len(conf.Conversation.ProductLinkTypes)),
		productPrefixes:  conf.Conversation.ProductLinkPrefix,
		logger:           logger,
	}
	for _, s := range conf.Conversation.SellerIndicators {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			n.sellerIndicators = append(n.sellerIndicators, s)
		}
	}
	for _, t := range conf.Conversation.ProductLinkTypes {
		n.productLinkTypes[t] = struct{}{}
	}
	return n
}

// Normalize never fails. Records it cannot read become error entries in
// their original position.
func (n *Normalizer) Normalize(data json.RawMessage) []models.ChatMessage {
	kind, records := detect(data)
	if kind == variantNone {
		return []models.ChatMessage{}
	}
	n.logger.Debugf(providers.TypeApp, "transcript shape %s, %d records", kind, len(records))

	out := make([]models.ChatMessage, 0, len(records))
	for i, rec := range records {
		out = append(out, n.normalizeRecord(i, rec))
	}
	return out
}

func (n *Normalizer) normalizeRecord(i int, rec json.RawMessage) (msg models.ChatMessage) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Errorf(providers.TypeApp, "message %d: %v", i, r)
			msg = errorEntry()
		}
	}()

	fields, ok := decodeObject(rec)
	if !ok {
		n.logger.Warnf(providers.TypeApp, "message %d is not an object", i)
		return errorEntry()
	}

	msg = models.ChatMessage{
		Content:     stringField(fields, contentFields, ""),
		Role:        n.inferRole(stringField(fields, senderFields, "")),
		MessageType: stringField(fields, typeFields, models.MessageTypeText),
	}
	if ts, ok := firstDefined(fields, timestampFields); ok {
		s := toString(ts)
		msg.Timestamp = &s
	}
	if _, isLink := n.productLinkTypes[msg.MessageType]; isLink {
		msg.Content = n.stripProductPrefix(msg.Content)
	}
	return msg
}

// inferRole is a best-effort guess from a free-text sender label.
func (n *Normalizer) inferRole(sender string) models.Role {
	label := strings.ToLower(strings.TrimSpace(sender))
	if label == "" {
		return models.RoleBuyer
	}
	if label == "seller" || label == "assistant" {
		return models.RoleSeller
	}
	for _, ind := range n.sellerIndicators {
		if strings.Contains(label, ind) {
			return models.RoleSeller
		}
	}
	if label == "ai" {
		return models.RoleAI
	}
	return models.RoleBuyer
}

func (n *Normalizer) stripProductPrefix(content string) string {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	for _, prefix := range n.productPrefixes {
		if prefix != "" && strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	return content
}

func errorEntry() models.ChatMessage {
	return models.ChatMessage{
		Content:     unreadableMessage,
		Role:        models.RoleBuyer,
		MessageType: models.MessageTypeError,
	}
}

func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// firstDefined walks names in order. Absent keys and JSON null are both
// treated as undefined; every other value, including "", is defined.
func firstDefined(fields map[string]any, names []string) (any, bool) {
	for _, name := range names {
		if v, ok := fields[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(fields map[string]any, names []string, fallback string) string {
	v, ok := firstDefined(fields, names)
	if !ok {
		return fallback
	}
	return toString(v)
}

func toString(v any) string {
	if num, ok := v.(json.Number); ok {
		return num.String()
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	if raw, err := json.Marshal(v); err == nil {
		return string(raw)
	}
	return fmt.Sprint(v)
}
