package race

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCreateRoomAnnouncedBeforeJoins(t *testing.T) {
	for i := 0; i < 3000; i++ {
		f := newFixture(testSettings())
		joinErr := make(chan error, 1)
		go func() {
			for {
				_, err := f.coordinator.JoinRoom("R", "P1")
				if !errors.Is(err, ErrRoomNotFound) {
					joinErr <- err
					return
				}
			}
		}()
		if _, err := f.coordinator.CreateRoom("R", "A1"); err != nil {
			t.Fatalf("create room: %v", err)
		}
		if err := <-joinErr; err != nil {
			t.Fatalf("join room: %v", err)
		}
		f.transport.expect(t, "A1", EventRoomCreated)
		f.transport.expect(t, "P1", EventRoomJoined)
		f.transport.expect(t, "R", EventPlayerJoined)
		if f.transport.members("R") != 2 {
			t.Fatalf("iteration %d: admin missing from group", i)
		}
	}
}

// collect drains the transport until stop is closed.
func collect(f fixture, stop <-chan struct{}) <-chan []sent {
	out := make(chan []sent, 1)
	go func() {
		var events []sent
		for {
			select {
			case s := <-f.transport.events:
				events = append(events, s)
			case <-stop:
				for {
					select {
					case s := <-f.transport.events:
						events = append(events, s)
					default:
						out <- events
						return
					}
				}
			}
		}
	}()
	return out
}

func phaseOf(f fixture, roomID string) (Phase, bool) {
	room, err := f.registry.Get(roomID)
	if err != nil {
		return PhaseFinished, false
	}
	return room.Snapshot().Phase, true
}

func TestConcurrentRace(t *testing.T) {
	f := newFixture(testSettings())
	players := []string{"P1", "P2", "P3", "P4"}
	f.openRoom(t, "R", "A1", players...)

	stop := make(chan struct{})
	collected := collect(f, stop)
	if err := f.coordinator.StartRace("R", "A1"); err != nil {
		t.Fatalf("start race: %v", err)
	}

	departed := make(chan struct{})
	var wg sync.WaitGroup
	for i, p := range players {
		wg.Add(1)
		go func(leaves bool, p string) {
			defer wg.Done()
			// Keep typing until the race timer destroys the room.
			for n := 1; ; n++ {
				err := f.coordinator.UpdateProgress("R", p, testText[:1+n%len(testText)])
				if errors.Is(err, ErrRoomNotFound) {
					return
				}
				if leaves && n == 100 {
					f.coordinator.Disconnect(p)
					close(departed)
					return
				}
			}
		}(i == len(players)-1, p)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			f.coordinator.JoinRoom("R", id)
			f.coordinator.UpdateProgress("R", id, "the")
			f.coordinator.JoinRoom("R", id)
		}(fmt.Sprintf("late%d", i))
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-departed
		for {
			phase, open := phaseOf(f, "R")
			if !open || phase == PhaseRunning {
				break
			}
			f.clock.Advance(time.Second)
			time.Sleep(time.Millisecond)
		}
		f.clock.Advance(f.coordinator.settings.RaceDuration)
	}()
	wg.Wait()
	f.waitForRooms(t, 0)
	close(stop)
	events := <-collected

	var counts []int
	startTyping, finalResults := 0, 0
	for i, s := range events {
		switch s.event.Type {
		case EventCountdown:
			if startTyping > 0 {
				t.Errorf("countdown after startTyping")
			}
			counts = append(counts, s.event.Data.(CountdownPayload).Count)
		case EventStartTyping:
			startTyping++
		case EventFinalResults:
			finalResults++
			if i != len(events)-1 {
				t.Errorf("events after finalResults: %d", len(events)-1-i)
			}
			final := s.event.Data.(PlayersPayload).Players
			if _, ok := final["P4"]; ok {
				t.Errorf("departed player in final results")
			}
			for _, p := range []string{"P1", "P2", "P3"} {
				if _, ok := final[p]; !ok {
					t.Errorf("player %s missing from final results", p)
				}
			}
		}
	}
	if fmt.Sprint(counts) != "[3 2 1]" {
		t.Errorf("wrong countdown expected: [3 2 1] got: %v", counts)
	}
	if startTyping != 1 || finalResults != 1 {
		t.Errorf("wrong event counts expected: 1 startTyping, 1 finalResults got: %d, %d", startTyping, finalResults)
	}
}
