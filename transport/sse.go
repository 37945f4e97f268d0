package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"typerace/race"
)

type ReceiverSSE struct {
	w http.ResponseWriter
	f http.Flusher
}

func NewReceiverSSE(w http.ResponseWriter, f http.Flusher) *ReceiverSSE {
	return &ReceiverSSE{w, f}
}

func (r ReceiverSSE) SendByteSlice(msg []byte) {
	fmt.Fprintf(r.w, "data: %s\n\n", msg)
	r.f.Flush()
}

func (r ReceiverSSE) sendJSON(msg any) {
	data, _ := json.Marshal(msg)
	r.SendByteSlice(data)
}

func (r ReceiverSSE) SendSnapshot(snapshot race.Snapshot) {
	r.sendJSON(race.Event{Type: "snapshot", Data: snapshot})
}

func (r ReceiverSSE) SendRoomClosedMessage() {
	r.sendJSON(race.Event{Type: "close"})
}
