package chatstream

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// finalMessageKey wraps the control payload in some backend revisions.
const finalMessageKey = "final_message_data"

type control struct {
	messageID string
	metadata  *Metadata
}

// parseControl decodes a JSON object as a control payload. It accepts the
// wrapped form {"final_message_data":{...}} and the bare form
// {"message_id":...,"metadata":{...}}. ok is false when raw is not valid
// JSON or carries neither completion marker.
func parseControl(raw []byte) (*control, bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return nil, false
	}

	body := top
	if inner, wrapped := top[finalMessageKey]; wrapped {
		body = nil
		if err := json.Unmarshal(inner, &body); err != nil {
			return nil, false
		}
		if body == nil {
			body = map[string]json.RawMessage{}
		}
	} else if _, bare := top["message_id"]; !bare {
		return nil, false
	}

	id, ok := decodeID(body["message_id"])
	if !ok {
		return nil, false
	}

	meta := &Metadata{}
	if rawMeta, present := body["metadata"]; present && !isNull(rawMeta) {
		if err := json.Unmarshal(rawMeta, meta); err != nil {
			return nil, false
		}
	}

	return &control{messageID: id, metadata: meta}, true
}

// decodeID accepts string and numeric ids. A missing or null id decodes to
// the empty string.
func decodeID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || isNull(raw) {
		return "", true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		return n.String(), true
	}

	return "", false
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
