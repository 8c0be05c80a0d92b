package we

import (
	"bytes"
	"context"

	"github.com/goccy/go-json"
)

const JSONEncoding = "application/json"

// Data carries an encoded payload. Over the wire a bare JSON value is accepted
// and tagged as JSON.
type Data struct {
	Encoding string          `json:"encoding"`
	Data     json.RawMessage `json:"data"`
}

func (d *Data) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Encoding *string         `json:"encoding"`
			Data     json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Encoding != nil {
			d.Encoding = *envelope.Encoding
			d.Data = envelope.Data
			return nil
		}
	}

	d.Encoding = JSONEncoding
	d.Data = append(json.RawMessage(nil), trimmed...)
	return nil
}

// UnmarshalJSONContext lets Data sit inside values decoded with
// json.UnmarshalContext, which requires it of every custom unmarshaler.
func (d *Data) UnmarshalJSONContext(_ context.Context, b []byte) error {
	return d.UnmarshalJSON(b)
}

func MarshalToData(value any) (Data, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Data{}, err
	}

	return Data{
		Encoding: JSONEncoding,
		Data:     data,
	}, nil
}

func UnmarshalFromData(data Data, value any) error {
	if data.Encoding != JSONEncoding {
		return InvalidEncoding(JSONEncoding, data.Encoding)
	}
	return json.Unmarshal(data.Data, value)
}
