package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrMissingType is returned for a message without a "type" field.
var ErrMissingType = errors.New("message has no type")

type inbound struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type outbound struct {
	Action  domain.Action `json:"action"`
	Payload any           `json:"payload"`
}

// Encode builds the wire form of an outgoing action.
func Encode(action domain.Action, payload any) ([]byte, error) {
	if payload == nil {
		payload = struct{}{}
	}
	return json.Marshal(outbound{Action: action, Payload: payload})
}

// Decode parses one inbound message. Types outside the known set decode to
// domain.Unrecognized without error.
func Decode(raw []byte) (domain.Event, error) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}

	var (
		ev  domain.Event
		err error
	)
	switch domain.EventType(msg.Type) {
	case domain.EventModelLoaded:
		ev, err = decodeAs[domain.ModelLoaded](msg.Data)
	case domain.EventModelUnloaded:
		ev, err = decodeAs[domain.ModelUnloaded](msg.Data)
	case domain.EventGenerationComplete:
		ev, err = decodeAs[domain.GenerationComplete](msg.Data)
	case domain.EventGenerationFailed:
		ev, err = decodeAs[domain.GenerationFailed](msg.Data)
	case domain.EventProgressUpdate:
		ev, err = decodeAs[domain.ProgressUpdate](msg.Data)
	case domain.EventGalleryUpdated:
		ev, err = decodeAs[domain.GalleryUpdated](msg.Data)
	case domain.EventImageDeleted:
		ev, err = decodeAs[domain.ImageDeleted](msg.Data)
	case domain.EventSettingsData, domain.EventSettingsDataUpdated:
		var e domain.SettingsData
		err = decodeData(msg.Data, &e)
		e.Updated = msg.Type == string(domain.EventSettingsDataUpdated)
		ev = e
	case domain.EventModelFileDeleted, domain.EventLoraFileDeleted:
		e := domain.FileDeleted{Kind: domain.FileModel}
		if msg.Type == string(domain.EventLoraFileDeleted) {
			e.Kind = domain.FileLora
		}
		err = decodeData(msg.Data, &e)
		ev = e
	case domain.EventError:
		ev, err = decodeAs[domain.ServerError](msg.Data)
	case domain.EventBackendRestarting:
		ev = domain.BackendRestarting{}
	case domain.EventCacheCleared:
		ev, err = decodeAs[domain.CacheCleared](msg.Data)
	default:
		return domain.Unrecognized{Name: msg.Type, Data: msg.Data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", msg.Type, err)
	}
	return ev, nil
}

func decodeAs[T domain.Event](data map[string]any) (domain.Event, error) {
	var e T
	if err := decodeData(data, &e); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeData(data map[string]any, out any) error {
	if data == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
