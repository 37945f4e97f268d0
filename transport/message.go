package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"typerace/race"
)

var (
	ErrUndefinedType    = errors.New("incorrect type")
	ErrMalformedMessage = errors.New("malformed message")
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func UnmarshalJSON[T any](data []byte) (T, error) {
	var parsed T
	err := json.Unmarshal(data, &parsed)
	return parsed, err
}

// DecodeMessage returns one of the race inbound message structs.
func DecodeMessage(msg []byte) (any, error) {
	env, err := UnmarshalJSON[envelope](msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch env.Type {
	case "createRoom":
		return decodeData[race.CreateRoomMessage](env.Data)
	case "joinRoom":
		return decodeData[race.JoinRoomMessage](env.Data)
	case "startTest":
		return decodeData[race.StartTestMessage](env.Data)
	case "updateProgress":
		return decodeData[race.UpdateProgressMessage](env.Data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUndefinedType, env.Type)
}

func decodeData[T any](data json.RawMessage) (any, error) {
	if len(data) == 0 {
		var empty T
		return empty, nil
	}
	parsed, err := UnmarshalJSON[T](data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return parsed, nil
}
