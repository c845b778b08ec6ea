package ws

import (
	"cardparty/internal/game"
	"cardparty/internal/model"
	"encoding/json"
	"fmt"
	"log"
)

// Client message types.
const (
	MsgJoinRoom         = "joinRoom"
	MsgQuizJoinPlayer   = "quizJoinPlayer"
	MsgQuizRejoinPlayer = "quizRejoinPlayer"
	MsgQuizJoinHostApp  = "quizJoinHostApp"
	MsgQuizAnswer       = "quizAnswer"
	MsgQuizHostAction   = "quizHostAction"
	MsgBingoCheck       = "bingoCheck"
	MsgBingoNewRound    = "bingoNewRound"
	MsgPing             = "ping"
)

// Server reply types not produced by game engines.
const (
	EventRoomJoined    = "roomJoined"
	EventQuizState     = "quizPlayerState"
	EventQuizAnswerAck = "quizAnswerAck"
	EventPong          = "pong"
	EventError         = "error"
)

// roleNone is the state of a connection before any join message.
const roleNone = model.Role("")

type dispatchKey struct {
	role    model.Role
	msgType string
}

type dispatchFunc func(conn *Connection, data json.RawMessage)

// dispatchTable maps (role, messageType) to a handler. Combinations
// not in the table are rejected, which is what enforces role
// privileges: only host connections can reach the host actions.
func (h *Handler) dispatchTable() map[dispatchKey]dispatchFunc {
	table := map[dispatchKey]dispatchFunc{
		{roleNone, MsgJoinRoom}:         h.joinRoom,
		{roleNone, MsgQuizJoinPlayer}:   h.quizJoinPlayer,
		{roleNone, MsgQuizRejoinPlayer}: h.quizRejoinPlayer,
		{roleNone, MsgQuizJoinHostApp}:  h.quizJoinHostApp,

		{model.RolePlayer, MsgQuizAnswer}:   h.quizAnswer,
		{model.RoleHost, MsgQuizHostAction}: h.quizHostAction,

		{model.RoleHost, MsgBingoNewRound}: h.bingoNewRound,
		{model.RoleHost, MsgBingoCheck}:    h.bingoCheck,
		{model.RolePlayer, MsgBingoCheck}:  h.bingoCheck,
	}
	for _, role := range []model.Role{roleNone, model.RoleHost, model.RoleHostApp, model.RolePlayer} {
		table[dispatchKey{role, MsgPing}] = h.ping
	}
	return table
}

func (h *Handler) dispatch(conn *Connection, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendError(conn, "malformed message")
		return
	}

	fn, okFn := h.table[dispatchKey{conn.Role, env.Type}]
	if !okFn {
		role := string(conn.Role)
		if role == "" {
			role = "unjoined"
		}
		h.sendError(conn, fmt.Sprintf("message %q not allowed for %s connection", env.Type, role))
		return
	}
	fn(conn, env.Data)
}

func (h *Handler) ping(conn *Connection, _ json.RawMessage) {
	h.hub.SendTo(conn, EventPong, map[string]interface{}{})
}

func (h *Handler) sendError(conn *Connection, msg string) {
	h.hub.SendTo(conn, EventError, map[string]interface{}{"error": msg})
}

// liveRoom loads a room from the shared store and reports the common
// failure modes back to the socket.
func (h *Handler) liveRoom(conn *Connection, roomID string) *model.Room {
	room, err := h.rooms.Live(h.ctx, roomID)
	if err != nil {
		log.Printf("ws: load room %s: %v", roomID, err)
		h.sendError(conn, "room lookup failed")
		return nil
	}
	if room == nil {
		h.sendError(conn, "not found")
		return nil
	}
	if room.State == model.RoomEnded {
		h.sendError(conn, "ended")
		return nil
	}
	return room
}

type joinRoomMsg struct {
	RoomID string `json:"roomId"`
	IsHost bool   `json:"isHost"`
}

func (h *Handler) joinRoom(conn *Connection, data json.RawMessage) {
	var msg joinRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.RoomID == "" {
		h.sendError(conn, "joinRoom needs a roomId")
		return
	}

	room := h.liveRoom(conn, msg.RoomID)
	if room == nil {
		return
	}

	role := model.RolePlayer
	if msg.IsHost {
		role = model.RoleHost
	}
	h.hub.Join(conn, room.UUID, role)

	payload := map[string]interface{}{
		"roomId":   room.UUID,
		"roomType": room.Type,
		"state":    room.State,
		"role":     role,
	}
	if role == model.RoleHost {
		payload["data"] = room.Data
	}
	h.hub.SendTo(conn, EventRoomJoined, payload)
}

type quizJoinMsg struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

func (h *Handler) quizJoinPlayer(conn *Connection, data json.RawMessage) {
	h.quizJoin(conn, data, false)
}

func (h *Handler) quizRejoinPlayer(conn *Connection, data json.RawMessage) {
	h.quizJoin(conn, data, true)
}

func (h *Handler) quizJoin(conn *Connection, data json.RawMessage, rejoin bool) {
	var msg quizJoinMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.RoomID == "" {
		h.sendError(conn, "join needs a roomId")
		return
	}

	room := h.liveRoom(conn, msg.RoomID)
	if room == nil {
		return
	}
	if room.Type != model.RoomTypeQuiz {
		h.sendError(conn, "not a quiz room")
		return
	}

	sc := h.rooms.ScanContext(h.ctx, room)
	var result *gameResult
	if rejoin {
		result = wrap(h.quiz.RejoinPlayer(sc, conn.ID, msg.PlayerName))
	} else {
		result = wrap(h.quiz.JoinPlayer(sc, conn.ID, msg.PlayerName))
	}
	if !result.ok(h, conn) {
		return
	}

	h.hub.Join(conn, room.UUID, model.RolePlayer)
	h.hub.SendTo(conn, EventRoomJoined, map[string]interface{}{
		"roomId":   room.UUID,
		"roomType": room.Type,
		"state":    room.State,
		"role":     model.RolePlayer,
	})
	h.hub.SendTo(conn, EventQuizState, result.res.Data)
}

type quizJoinHostAppMsg struct {
	RoomID string `json:"roomId"`
}

func (h *Handler) quizJoinHostApp(conn *Connection, data json.RawMessage) {
	var msg quizJoinHostAppMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.RoomID == "" {
		h.sendError(conn, "quizJoinHostApp needs a roomId")
		return
	}

	room := h.liveRoom(conn, msg.RoomID)
	if room == nil {
		return
	}
	if room.Type != model.RoomTypeQuiz {
		h.sendError(conn, "not a quiz room")
		return
	}

	h.hub.Join(conn, room.UUID, model.RoleHostApp)
	h.hub.SendTo(conn, EventRoomJoined, map[string]interface{}{
		"roomId":   room.UUID,
		"roomType": room.Type,
		"state":    room.State,
		"role":     model.RoleHostApp,
	})
}

type quizAnswerMsg struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

func (h *Handler) quizAnswer(conn *Connection, data json.RawMessage) {
	var msg quizAnswerMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(conn, "malformed quizAnswer")
		return
	}

	room := h.liveRoom(conn, conn.RoomID)
	if room == nil {
		return
	}

	sc := h.rooms.ScanContext(h.ctx, room)
	result := wrap(h.quiz.SubmitAnswer(sc, conn.ID, msg.QuestionIndex, msg.Answer))
	if !result.ok(h, conn) {
		return
	}
	// The ack stays neutral; correctness is revealed to everyone at
	// once in the reveal phase.
	h.hub.SendTo(conn, EventQuizAnswerAck, map[string]interface{}{"accepted": true})
}

type quizHostActionMsg struct {
	Action string `json:"action"`
}

func (h *Handler) quizHostAction(conn *Connection, data json.RawMessage) {
	var msg quizHostActionMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.Action == "" {
		h.sendError(conn, "quizHostAction needs an action")
		return
	}

	room := h.liveRoom(conn, conn.RoomID)
	if room == nil {
		return
	}
	if room.Type != model.RoomTypeQuiz {
		h.sendError(conn, "not a quiz room")
		return
	}

	sc := h.rooms.ScanContext(h.ctx, room)
	wrap(h.quiz.HostAction(sc, msg.Action)).ok(h, conn)
}

type bingoCheckMsg struct {
	Sheet []int `json:"sheet"`
}

func (h *Handler) bingoCheck(conn *Connection, data json.RawMessage) {
	var msg bingoCheckMsg
	if err := json.Unmarshal(data, &msg); err != nil || len(msg.Sheet) == 0 {
		h.sendError(conn, "bingoCheck needs a sheet")
		return
	}

	room := h.liveRoom(conn, conn.RoomID)
	if room == nil {
		return
	}
	if room.Type != model.RoomTypeBingo {
		h.sendError(conn, "not a bingo room")
		return
	}

	sc := h.rooms.ScanContext(h.ctx, room)
	wrap(h.bingo.Check(sc, msg.Sheet)).ok(h, conn)
}

func (h *Handler) bingoNewRound(conn *Connection, _ json.RawMessage) {
	room := h.liveRoom(conn, conn.RoomID)
	if room == nil {
		return
	}
	if room.Type != model.RoomTypeBingo {
		h.sendError(conn, "not a bingo room")
		return
	}

	sc := h.rooms.ScanContext(h.ctx, room)
	wrap(h.bingo.NewRound(sc)).ok(h, conn)
}

// gameResult folds the (result, error) pair every engine call returns
// into one reply decision.
type gameResult struct {
	res *game.ScanResult
	err error
}

func wrap(res *game.ScanResult, err error) *gameResult {
	return &gameResult{res: res, err: err}
}

// ok reports the outcome to the socket on failure and returns whether
// the caller should continue.
func (r *gameResult) ok(h *Handler, conn *Connection) bool {
	if r.err != nil {
		log.Printf("ws: engine error: %v", r.err)
		h.sendError(conn, "internal error")
		return false
	}
	if !r.res.Success {
		h.sendError(conn, r.res.Error)
		return false
	}
	return true
}
