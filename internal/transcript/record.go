package transcript

import "github.com/tidwall/gjson"

// MutationTools are the tool names that mark a file as written or edited.
var MutationTools = map[string]bool{
	"Write": true,
	"Edit":  true,
}

// Record is one well-formed line of a Claude Code session log.
// No schema is assumed; fields are read by gjson path and may be absent.
type Record struct {
	raw gjson.Result
}

// ParseRecord parses a single JSON line. ok is false for invalid JSON.
func ParseRecord(line []byte) (Record, bool) {
	if !gjson.ValidBytes(line) {
		return Record{}, false
	}
	return Record{raw: gjson.ParseBytes(line)}, true
}

// Get looks up a dotted path. Use Exists on the result to detect absence.
func (r Record) Get(path string) gjson.Result {
	return r.raw.Get(path)
}

// Type returns the top-level "type" discriminator, or "" if it is not a string.
func (r Record) Type() string {
	return stringAt(r.raw, "type")
}

// StringContent returns message.content when it is a plain string.
// Array content (tool results, images) reports ok=false.
func (r Record) StringContent() (string, bool) {
	c := r.raw.Get("message.content")
	if c.Type != gjson.String {
		return "", false
	}
	return c.Str, true
}

// ToolUses returns the entries of message.content when it is an array.
func (r Record) ToolUses() []ToolUse {
	c := r.raw.Get("message.content")
	if !c.IsArray() {
		return nil
	}
	var uses []ToolUse
	c.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			uses = append(uses, ToolUse{raw: item})
		}
		return true
	})
	return uses
}

// HasMutation reports whether any tool use in the record is a mutation tool.
func (r Record) HasMutation() bool {
	for _, tu := range r.ToolUses() {
		if tu.IsMutation() {
			return true
		}
	}
	return false
}

// ToolUse is a single content block that may name a tool invocation.
type ToolUse struct {
	raw gjson.Result
}

// Name returns the tool name, or "" if absent or not a string.
func (t ToolUse) Name() string {
	return stringAt(t.raw, "name")
}

// IsMutation reports whether the tool writes or edits files.
func (t ToolUse) IsMutation() bool {
	return MutationTools[t.Name()]
}

// FilePath returns input.file_path when it is a string.
func (t ToolUse) FilePath() (string, bool) {
	p := t.raw.Get("input.file_path")
	if p.Type != gjson.String {
		return "", false
	}
	return p.Str, true
}

func stringAt(v gjson.Result, path string) string {
	r := v.Get(path)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
