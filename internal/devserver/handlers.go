package devserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
	"github.com/stafflyhq/chat/internal/transport/ws"
	"github.com/stafflyhq/chat/pkg/validator"
)

func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())
	writeJSON(w, http.StatusOK, s.state.listChannels(who.userID))
}

func (s *Server) createChannel(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())

	var input struct {
		Name        string             `json:"name"`
		Type        domain.ChannelType `json:"channel_type"`
		OtherUserID *uuid.UUID         `json:"other_user_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateChannel(input.Name, string(input.Type)); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}
	if input.Type == domain.ChannelDirect && input.OtherUserID == nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Direct channel requires other_user_id")
		return
	}

	ch, err := s.state.createChannel(who.userID, input.Name, input.Type, input.OtherUserID)
	if err != nil {
		log.Printf("ERROR create channel: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, ch)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var body struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	targetID, err := uuid.Parse(body.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := s.state.addMember(channelID, targetID, body.Role); err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found")
		} else {
			log.Printf("ERROR add member: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	threads, err := s.state.listThreads(channelID)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found")
		} else {
			log.Printf("ERROR list threads: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, threads)
}

func (s *Server) createThread(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var input struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateThread(input.Title); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	th, err := s.state.createThread(channelID, who.userID, input.Title)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found")
		} else {
			log.Printf("ERROR create thread: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	if evt, err := ws.NewEvent(ws.EventThreadCreated, &channelID, ws.ThreadPayload{Thread: *th}); err == nil {
		s.hub.broadcastEvent([]uuid.UUID{channelID}, evt, nil)
	}

	writeJSON(w, http.StatusCreated, th)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	threadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid thread ID")
		return
	}

	messages, err := s.state.listMessages(threadID)
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Thread not found")
		} else {
			log.Printf("ERROR list messages: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) createMessage(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())
	threadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid thread ID")
		return
	}

	var input struct {
		Content  string           `json:"content"`
		Mentions []domain.Mention `json:"mentions,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateMessage(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, th, err := s.state.createMessage(threadID, who, input.Content, input.Mentions)
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Thread not found")
		} else {
			log.Printf("ERROR create message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	// Push to the thread room and the owning channel room: members watching
	// the channel but not this thread still need the message for unread
	// badges. The hub delivers once even when a client is in both rooms.
	rooms := []uuid.UUID{threadID, th.ChannelID}
	if evt, err := ws.NewEvent(ws.EventMessageCreated, &threadID, ws.MessagePayload{Message: *msg}); err == nil {
		s.hub.broadcastEvent(rooms, evt, nil)
	}
	if evt, err := ws.NewEvent(ws.EventThreadUpdated, &th.ChannelID, ws.ThreadPayload{Thread: *th}); err == nil {
		s.hub.broadcastEvent([]uuid.UUID{th.ChannelID}, evt, nil)
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) updateMessage(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.ValidateMessage(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := s.state.updateMessage(messageID, who.userID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, ErrNotSender):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the sender can edit a message")
		default:
			log.Printf("ERROR update message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	if th, err := s.state.getThread(msg.ThreadID); err == nil {
		if evt, err := ws.NewEvent(ws.EventMessageUpdated, &msg.ThreadID, ws.MessagePayload{Message: *msg}); err == nil {
			s.hub.broadcastEvent([]uuid.UUID{msg.ThreadID, th.ChannelID}, evt, nil)
		}
	}

	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	msg, err := s.state.deleteMessage(messageID, who.userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, ErrNotSender):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the sender can delete a message")
		default:
			log.Printf("ERROR delete message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	if th, err := s.state.getThread(msg.ThreadID); err == nil {
		payload := ws.MessageDeletedPayload{ID: msg.ID, ThreadID: msg.ThreadID}
		if evt, err := ws.NewEvent(ws.EventMessageDeleted, &msg.ThreadID, payload); err == nil {
			s.hub.broadcastEvent([]uuid.UUID{msg.ThreadID, th.ChannelID}, evt, nil)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	if err := s.state.markRead(messageID, who.userID); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		} else {
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addReaction(w http.ResponseWriter, r *http.Request) {
	who := getIdentity(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var input struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Emoji == "" {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := s.state.addReaction(messageID, who.userID, input.Emoji); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		} else {
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pinMessage(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var input struct {
		MessageID string `json:"message_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	messageID, err := uuid.Parse(input.MessageID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	if err := s.state.pinMessage(channelID, messageID); err != nil {
		switch {
		case errors.Is(err, ErrChannelNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found")
		case errors.Is(err, ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    "VALIDATION",
			"message": "Validation failed",
			"fields":  errs,
		},
	})
}
