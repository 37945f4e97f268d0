package race

import (
	"testing"
	"time"
)

func newTestRouter(settings Settings) (*Router, fixture) {
	f := newFixture(settings)
	return NewRouter(f.coordinator, f.transport), f
}

func TestRouterCreateRoom(t *testing.T) {
	r, f := newTestRouter(testSettings())
	r.Handle("A1", CreateRoomMessage{RoomID: "R"})
	created := f.transport.expect(t, "A1", EventRoomCreated).event.Data.(RoomCreatedPayload)
	if created.RoomID != "R" || !created.IsAdmin {
		t.Errorf("wrong roomCreated payload: %+v", created)
	}

	r.Handle("A2", CreateRoomMessage{RoomID: "R"})
	s := f.transport.expect(t, "A2", EventRoomError)
	if s.event.Data != "Room already exists" {
		t.Errorf("wrong error message got: %v", s.event.Data)
	}
}

func TestRouterCreateRoomWithoutID(t *testing.T) {
	r, f := newTestRouter(testSettings())
	r.Handle("A1", CreateRoomMessage{})
	created := f.transport.expect(t, "A1", EventRoomCreated).event.Data.(RoomCreatedPayload)
	if created.RoomID == "" {
		t.Errorf("expected a generated room id")
	}
}

func TestRouterJoinMissingRoom(t *testing.T) {
	r, f := newTestRouter(testSettings())
	r.Handle("X", JoinRoomMessage{RoomID: "nope"})
	s := f.transport.expect(t, "X", EventRoomError)
	if s.event.Data != "Room does not exist" {
		t.Errorf("wrong error message got: %v", s.event.Data)
	}
}

func TestRouterRejoinDuringRace(t *testing.T) {
	r, f := newTestRouter(testSettings())
	f.openRoom(t, "R", "A1", "P1")
	r.Handle("A1", StartTestMessage{RoomID: "R"})
	r.Handle("P1", JoinRoomMessage{RoomID: "R"})
	s := f.transport.expect(t, "P1", EventRoomError)
	if s.event.Data != "Already joined this race" {
		t.Errorf("wrong error message got: %v", s.event.Data)
	}
}

func TestRouterSilentRejections(t *testing.T) {
	r, f := newTestRouter(testSettings())
	f.openRoom(t, "R", "A1", "P1")

	r.Handle("P1", StartTestMessage{RoomID: "R"})
	r.Handle("A1", StartTestMessage{RoomID: "missing"})
	r.Handle("P1", UpdateProgressMessage{RoomID: "R", TypedText: "the"})
	r.Handle("P1", UpdateProgressMessage{RoomID: "missing", TypedText: "the"})
	f.clock.Advance(time.Second)
	f.transport.expectNone(t)
}

func TestRouterRace(t *testing.T) {
	r, f := newTestRouter(testSettings())
	r.Handle("A1", CreateRoomMessage{RoomID: "R"})
	f.transport.expect(t, "A1", EventRoomCreated)
	r.Handle("P1", JoinRoomMessage{RoomID: "R"})
	f.transport.expect(t, "P1", EventRoomJoined)
	f.transport.expect(t, "R", EventPlayerJoined)

	r.Handle("A1", StartTestMessage{RoomID: "R"})
	for i := 0; i < 3; i++ {
		f.clock.Advance(time.Second)
		f.transport.expect(t, "R", EventCountdown)
	}
	f.transport.expect(t, "R", EventStartTyping)

	f.clock.Advance(12 * time.Second)
	r.Handle("P1", UpdateProgressMessage{RoomID: "R", TypedText: testText[:20]})
	p := f.transport.expect(t, "R", EventUpdateLeaderboard).event.Data.(PlayersPayload).Players["P1"]
	if p.WPM != 20 || p.Accuracy != 100 {
		t.Errorf("wrong scores: %+v", p)
	}

	r.Disconnect("A1")
	f.transport.expect(t, "R", EventAdminLeft)
	r.Handle("P1", UpdateProgressMessage{RoomID: "R", TypedText: testText[:30]})
	f.transport.expectNone(t)
}

func TestRouterUnknownMessage(t *testing.T) {
	r, f := newTestRouter(testSettings())
	r.Handle("X", struct{}{})
	f.transport.expectNone(t)
}
