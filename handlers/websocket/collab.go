package websocket

import (
	"emojiart-server/core"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/engine.io/v2/utils"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	// EventDrawingUpdated carries the full drawing after a committed edit.
	EventDrawingUpdated = "drawing-updated"
	// EventDrawingDeleted carries the id of a deleted drawing.
	EventDrawingDeleted = "drawing-deleted"
)

type ackInvoker func(err error, payload map[string]any)

// Hub runs the socket.io server. Each drawing is a room named by its id;
// clients join it to receive every committed edit of that drawing.
type Hub struct {
	srv *socketio.Server

	roomsMutex  sync.RWMutex
	activeRooms map[string]int
}

func NewHub() *Hub {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	localhostOrigin := regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)
	opts.SetCors(&types.Cors{
		Origin: []any{
			localhostOrigin,
		},
		Credentials: true,
	})

	h := &Hub{
		srv:         socketio.NewServer(nil, opts),
		activeRooms: make(map[string]int),
	}
	h.srv.On("connection", h.onConnection)
	return h
}

func (h *Hub) Server() *socketio.Server {
	return h.srv
}

func (h *Hub) Close() {
	h.srv.Close(nil)
}

// ActiveRooms lists drawings with connected clients, busiest first.
func (h *Hub) ActiveRooms() []core.Room {
	h.roomsMutex.RLock()
	defer h.roomsMutex.RUnlock()

	rooms := make([]core.Room, 0, len(h.activeRooms))
	for id, users := range h.activeRooms {
		rooms = append(rooms, core.Room{ID: id, Users: users})
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Users == rooms[j].Users {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Users > rooms[j].Users
	})
	return rooms
}

func (h *Hub) setRoomUsers(roomID string, users int) {
	h.roomsMutex.Lock()
	defer h.roomsMutex.Unlock()

	if users <= 0 {
		delete(h.activeRooms, roomID)
		return
	}
	h.activeRooms[roomID] = users
}

// DrawingUpdated pushes the drawing to everyone in its room.
func (h *Hub) DrawingUpdated(d *core.Drawing) {
	if err := h.srv.To(socketio.Room(d.ID)).Emit(EventDrawingUpdated, d); err != nil {
		utils.Log().Printf("failed to emit update for drawing %v: %v\n", d.ID, err)
	}
}

func (h *Hub) DrawingDeleted(id string) {
	if err := h.srv.To(socketio.Room(id)).Emit(EventDrawingDeleted, id); err != nil {
		utils.Log().Printf("failed to emit delete for drawing %v: %v\n", id, err)
	}
	h.setRoomUsers(id, 0)
}

func (h *Hub) onConnection(clients ...any) {
	socket, ok := clients[0].(*socketio.Socket)
	if !ok {
		return
	}

	me := socket.Id()
	myRoom := socketio.Room(me)
	_ = h.srv.To(myRoom).Emit("init-room")
	utils.Log().Printf("init room %v\n", myRoom)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	socket.On("join-room", func(datas ...any) {
		ack, args := extractAck(datas)
		roomID, err := parseRoomID(args)
		if err != nil {
			respondWithAck(socket, ack, "join-room-ack", map[string]any{
				"status": "error",
				"error":  err.Error(),
			}, err)
			return
		}

		room := socketio.Room(roomID)
		socket.Join(room)
		utils.Log().Printf("Socket %v has joined %v\n", me, room)

		h.srv.In(room).FetchSockets()(func(users []*socketio.RemoteSocket, fetchErr error) {
			if fetchErr != nil {
				respondWithAck(socket, ack, "join-room-ack", map[string]any{
					"status": "error",
					"error":  fetchErr.Error(),
				}, fetchErr)
				return
			}

			h.setRoomUsers(roomID, len(users))

			if len(users) <= 1 {
				_ = h.srv.To(myRoom).Emit("first-in-room")
			} else {
				_ = socket.Broadcast().To(room).Emit("new-user", me)
			}

			roomUsers := make([]socketio.SocketId, 0, len(users))
			for _, user := range users {
				roomUsers = append(roomUsers, user.Id())
			}
			h.srv.In(room).Emit("room-user-change", roomUsers)

			respondWithAck(socket, ack, "join-room-ack", map[string]any{
				"status":     "ok",
				"user_count": len(users),
			}, nil)
		})
	})

	// Relays transient view state (pointers, viewports) that is never
	// stored with the drawing.
	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	socket.On("server-volatile-broadcast", func(datas ...any) {
		handleBroadcast(socket, datas)
	})

	socket.On("disconnecting", func(datas ...any) {
		for _, currentRoom := range socket.Rooms().Keys() {
			if currentRoom == myRoom {
				continue
			}
			roomID := string(currentRoom)
			h.srv.In(currentRoom).FetchSockets()(func(users []*socketio.RemoteSocket, _ error) {
				utils.Log().Printf("disconnecting %v from room %v\n", me, currentRoom)

				otherClients := make([]socketio.SocketId, 0, len(users))
				for _, userInRoom := range users {
					if userInRoom.Id() != me {
						otherClients = append(otherClients, userInRoom.Id())
					}
				}

				h.setRoomUsers(roomID, len(otherClients))
				if len(otherClients) > 0 {
					h.srv.In(currentRoom).Emit("room-user-change", otherClients)
				}
			})
		}
	})

	socket.On("disconnect", func(datas ...any) {
		socket.RemoveAllListeners("")
		socket.Disconnect(true)
	})
}

func parseRoomID(args []any) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("room id is required")
	}
	roomID, ok := args[0].(string)
	if !ok || roomID == "" {
		return "", fmt.Errorf("invalid room id")
	}
	return roomID, nil
}

func handleBroadcast(socket *socketio.Socket, datas []any) {
	roomID, payload, ack := parseBroadcastArgs(datas)
	if roomID == "" {
		err := fmt.Errorf("missing room id")
		respondWithAck(socket, ack, "broadcast-ack", makeBroadcastAckPayload(err), err)
		return
	}

	err := socket.Volatile().Broadcast().To(socketio.Room(roomID)).Emit("client-broadcast", payload)
	respondWithAck(socket, ack, "broadcast-ack", makeBroadcastAckPayload(err), err)
}

func extractAck(datas []any) (ack ackInvoker, args []any) {
	if len(datas) == 0 {
		return nil, datas
	}

	ack = wrapAck(datas[len(datas)-1])
	if ack == nil {
		return nil, datas
	}
	return ack, datas[:len(datas)-1]
}

// wrapAck adapts whatever callback shape the client library hands us into
// an ackInvoker. Callbacks with one parameter receive the error or payload;
// callbacks with two receive both.
func wrapAck(candidate any) ackInvoker {
	if candidate == nil {
		return nil
	}

	value := reflect.ValueOf(candidate)
	if value.Kind() != reflect.Func {
		return nil
	}

	typ := value.Type()
	return func(err error, payload map[string]any) {
		args := make([]reflect.Value, typ.NumIn())
		for i := range args {
			var arg any
			switch {
			case typ.NumIn() == 1 && err != nil:
				arg = err
			case typ.NumIn() == 1:
				arg = payload
			case i == 0:
				arg = err
			case i == 1:
				arg = payload
			}
			args[i] = coerceValue(arg, typ.In(i))
		}
		value.Call(args)
	}
}

func coerceValue(value any, targetType reflect.Type) reflect.Value {
	if value == nil {
		return reflect.Zero(targetType)
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(targetType):
		return rv
	case targetType.Kind() == reflect.String:
		return reflect.ValueOf(fmt.Sprint(value)).Convert(targetType)
	case rv.Type().ConvertibleTo(targetType):
		return rv.Convert(targetType)
	}
	return reflect.Zero(targetType)
}

func respondWithAck(socket *socketio.Socket, ack ackInvoker, event string, payload map[string]any, ackErr error) {
	if ack != nil {
		ack(ackErr, payload)
	}

	if event != "" && payload != nil {
		_ = socket.Emit(event, payload)
	}
}

func parseBroadcastArgs(datas []any) (roomID string, payload any, ack ackInvoker) {
	ack, args := extractAck(datas)
	if len(args) < 2 {
		return "", nil, ack
	}

	roomID, _ = args[0].(string)
	return roomID, args[1], ack
}

func makeBroadcastAckPayload(ackErr error) map[string]any {
	response := map[string]any{"status": "ok"}
	if ackErr != nil {
		response["status"] = "error"
		response["error"] = ackErr.Error()
	}
	return response
}
