package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivancheban/salary-bot/internal/bot"
	"github.com/ivancheban/salary-bot/internal/config"
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NextResponse is the body of GET /next.
type NextResponse struct {
	Date      string `json:"date"`
	Target    string `json:"target"`
	Shift     int    `json:"shift"`
	Override  bool   `json:"override"`
	Countdown string `json:"countdown"`
}

// dispatchRequest holds the keys that select a handler on POST /.
type dispatchRequest struct {
	UpdateID   *int            `json:"update_id"`
	Trigger    string          `json:"trigger"`
	Source     string          `json:"source"`
	DetailType json.RawMessage `json:"detail-type"`
}

func (d dispatchRequest) isNotification() bool {
	return d.Trigger == config.TriggerDailyNotification ||
		d.Source == config.SourceScheduledEvents ||
		len(d.DetailType) > 0
}

// handleDispatch accepts both Telegram updates and scheduled-event
// payloads on one endpoint, choosing by the keys present.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.HTTPErrInvalidJSON})
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	var req dispatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.HTTPErrInvalidJSON})
		return
	}

	switch {
	case req.isNotification():
		s.notify(w, r)
	case req.UpdateID != nil:
		var u tgbotapi.Update
		if err := json.Unmarshal(body, &u); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.HTTPErrInvalidJSON})
			return
		}
		s.update(w, r, u)
	default:
		slog.Warn(config.MsgUnknownRequest, config.LogKeyComponent, config.CompServer)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.HTTPErrUnrecognized})
	}
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var u tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.HTTPErrInvalidJSON})
		return
	}
	s.update(w, r, u)
}

// update always acknowledges the update; Telegram would otherwise redeliver it.
func (s *Server) update(w http.ResponseWriter, r *http.Request, u tgbotapi.Update) {
	slog.Debug(config.MsgUpdateReceived,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyUpdateID, u.UpdateID,
	)
	if err := s.bot.HandleUpdate(r.Context(), u); err != nil {
		slog.Error(config.ErrSend,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyUpdateID, u.UpdateID,
			config.LogKeyError, err,
		)
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: config.HTTPMsgOK})
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	s.notify(w, r)
}

func (s *Server) notify(w http.ResponseWriter, r *http.Request) {
	res, err := s.bot.NotifyDaily(r.Context())
	if err != nil {
		slog.Error(config.ErrNotify,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: config.HTTPErrNotifyFailed})
		return
	}
	msg := config.HTTPMsgNotifySent
	if res == bot.NotifySkipped {
		msg = config.HTTPMsgNotifySkipped
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	sd, text, err := s.bot.Next()
	if err != nil {
		slog.Error(config.ErrResolve,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: config.HTTPErrResolveFailure})
		return
	}
	writeJSON(w, http.StatusOK, NextResponse{
		Date:      sd.At.Format(config.DateTimeLayout),
		Target:    sd.Target.Format(config.DateLayout),
		Shift:     sd.Shift,
		Override:  sd.Override,
		Countdown: text,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: config.HTTPMsgOK})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
