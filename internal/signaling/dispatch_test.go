package signaling

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mossy-p/p2p-relay/internal/models"
)

func envelope(event string, id *uint64, data string) models.Envelope {
	msg := models.Envelope{Event: event, ID: id}
	if data != "" {
		msg.Data = json.RawMessage(data)
	}
	return msg
}

func TestHandleMessage_Protocol(t *testing.T) {
	tr := newTestRouter(t)
	one, two := uint64(1), uint64(2)

	tr.HandleMessage("A", envelope(models.EventJoinRoom, &one, `{"roomId":"x","role":"sender"}`))
	tr.HandleMessage("B", envelope(models.EventJoinRoom, &two, `{"roomId":"x","role":"receiver"}`))
	tr.transport.reset()

	tr.HandleMessage("A", envelope(models.EventSignal, nil, `{"roomId":"x","signal":{"candidate":"c1","sdpMid":"0"}}`))
	tr.HandleMessage("B", envelope(models.EventChunkReceived, nil, `{"roomId":"x","chunkId":17}`))
	tr.HandleMessage("A", envelope(models.EventFilesCompleted, nil, `"x"`))

	want := []delivery{
		{To: "B", Event: models.EventSignal, Data: json.RawMessage(`{"candidate":"c1","sdpMid":"0"}`)},
		{To: "A", Event: models.EventChunkAck, Data: json.Number("17")},
		{Room: "x", Event: models.EventTransferCompleted},
	}
	if !reflect.DeepEqual(tr.transport.out, want) {
		t.Errorf("out = %+v", tr.transport.out)
	}
}

func TestHandleMessage_RoomRefForms(t *testing.T) {
	for name, data := range map[string]string{
		"bare string": `"x"`,
		"object":      `{"roomId":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			tr := newTestRouter(t)
			tr.mustJoin(t, "A", "x", models.RoleSender)

			tr.HandleMessage("A", envelope(models.EventLeaveRoom, nil, data))

			if tr.rooms.Get("x") != nil {
				t.Error("leave-room should have emptied and removed the room")
			}
		})
	}
}

func TestHandleMessage_MalformedJoinAcksFalse(t *testing.T) {
	tr := newTestRouter(t)
	id := uint64(9)

	tr.HandleMessage("A", envelope(models.EventJoinRoom, &id, `["x","sender"`))

	want := []delivery{{To: "A", Event: models.EventAck, Data: false, ID: 9}}
	if !reflect.DeepEqual(tr.transport.out, want) {
		t.Errorf("out = %+v", tr.transport.out)
	}
	if tr.rooms.Len() != 0 {
		t.Error("malformed join created a room")
	}
}

func TestHandleMessage_JoinWithoutAckID(t *testing.T) {
	tr := newTestRouter(t)

	tr.HandleMessage("A", envelope(models.EventJoinRoom, nil, `{"roomId":"x","role":"sender"}`))

	if got := tr.transport.events(); !reflect.DeepEqual(got, []string{models.EventRoomUpdate}) {
		t.Errorf("events = %v", got)
	}
	if tr.rooms.Get("x") == nil {
		t.Error("join without ack id should still be processed")
	}
}

func TestHandleMessage_DropsGarbage(t *testing.T) {
	tr := newTestRouter(t)
	tr.mustJoin(t, "A", "x", models.RoleSender)
	tr.transport.reset()

	for _, msg := range []models.Envelope{
		envelope("bogus-event", nil, `{}`),
		envelope(models.EventSignal, nil, `[1,2`),
		envelope(models.EventChunkReceived, nil, `{"roomId":"x","chunkId":"nan"}`),
		envelope(models.EventFilesCompleted, nil, `42`),
		envelope(models.EventLeaveRoom, nil, ``),
	} {
		tr.HandleMessage("A", msg)
	}

	if len(tr.transport.out) != 0 {
		t.Errorf("out = %+v", tr.transport.out)
	}
	if room := tr.rooms.Get("x"); room == nil || room.Sender != "A" || room.FilesCompleted {
		t.Errorf("room = %+v", room)
	}
}

func TestHandleDisconnect(t *testing.T) {
	tr := newTestRouter(t)
	tr.mustJoin(t, "A", "x", models.RoleSender)

	tr.HandleDisconnect("A")

	if tr.rooms.Get("x") != nil {
		t.Error("room should be removed on disconnect")
	}
}
