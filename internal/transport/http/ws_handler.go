package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"geoquiz/internal/app"
	"geoquiz/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	metrics  *Metrics
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger, metrics *Metrics) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

var knownMessageTypes = map[string]bool{
	"start":   true,
	"answer":  true,
	"next":    true,
	"back":    true,
	"current": true,
	"finish":  true,
}

// messageLabel keeps the metric label set bounded whatever clients send.
func messageLabel(msgType string) string {
	if knownMessageTypes[msgType] {
		return msgType
	}
	return "unknown"
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Continent string `json:"continent"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type continentCount struct {
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	Questions int    `json:"questions"`
}

type readyPayload struct {
	Username   string           `json:"username"`
	Total      int              `json:"total"`
	Continents []continentCount `json:"continents"`
}

type questionPayload struct {
	Index          int      `json:"index"`
	Total          int      `json:"total"`
	QuestionID     int64    `json:"questionId"`
	QuestionType   string   `json:"questionType"`
	Continent      string   `json:"continent"`
	Text           string   `json:"text"`
	Display        string   `json:"display"`
	Options        []string `json:"options,omitempty"`
	Answered       bool     `json:"answered"`
	ElapsedSeconds int      `json:"elapsedSeconds"`
}

type answerRecordedPayload struct {
	Correct         bool   `json:"correct"`
	CorrectAnswer   string `json:"correctAnswer"`
	AlreadyAnswered bool   `json:"alreadyAnswered"`
}

type resultPayload struct {
	ResultID   int64   `json:"resultId"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Wrong      int     `json:"wrong"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
	Message    string  `json:"message"`
	TimeTaken  string  `json:"timeTaken"`
	Continent  string  `json:"continent"`
}

// ServeWS authenticates the player, upgrades to a websocket and drives one quiz
// session per connection. The session is dropped when the connection closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	password := r.URL.Query().Get("password")
	if username == "" || password == "" {
		http.Error(w, "missing username or password", http.StatusBadRequest)
		return
	}
	user, err := h.service.Authenticate(r.Context(), username, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Error("authenticate", zap.String("username", username), zap.Error(err))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.Connections.Inc()
	defer h.metrics.Connections.Dec()

	// a session started by another connection of the same user survives this one
	var started uint64
	defer func() { h.service.Abandon(user.ID, started) }()

	log := h.log.With(zap.Int64("userId", user.ID), zap.String("username", user.Username))
	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn("ws write error", zap.Error(err))
				return
			}
		}
	}()

	send <- h.ready(r.Context(), user)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.metrics.Messages.WithLabelValues(messageLabel(inbound.Type)).Inc()
		for _, msg := range h.handle(r.Context(), log, user, &started, inbound) {
			send <- msg
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, log *zap.Logger, user domain.User, started *uint64, in inboundMessage) []outboundMessage[any] {
	switch in.Type {
	case "start":
		var payload startPayload
		if len(in.Payload) > 0 {
			if err := json.Unmarshal(in.Payload, &payload); err != nil {
				return errorMessages("invalid start payload")
			}
		}
		filter, err := domain.ParseContinentFilter(payload.Continent)
		if err != nil {
			return errorMessages(err.Error())
		}
		snap, err := h.service.StartQuiz(ctx, user, filter)
		if err != nil {
			return h.failure(log, "start quiz", err)
		}
		*started = snap.SessionID
		log.Info("quiz started", zap.String("continent", filter.DisplayName()), zap.Int("questions", snap.Total))
		return []outboundMessage[any]{questionMessage(snap)}

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			return errorMessages("invalid answer payload")
		}
		feedback, err := h.service.SubmitAnswer(ctx, user.ID, payload.Answer)
		already := errors.Is(err, app.ErrAlreadyAnswered)
		if err != nil && !already {
			return h.failure(log, "submit answer", err)
		}
		if !already {
			outcome := "wrong"
			if feedback.Correct {
				outcome = "correct"
			}
			h.metrics.Answers.WithLabelValues(outcome).Inc()
		}
		return []outboundMessage[any]{{Type: "answerRecorded", Payload: answerRecordedPayload{
			Correct:         feedback.Correct,
			CorrectAnswer:   feedback.CorrectAnswer,
			AlreadyAnswered: already,
		}}}

	case "next":
		progress, err := h.service.Next(ctx, user.ID)
		if err != nil {
			return h.failure(log, "next question", err)
		}
		if progress.Result != nil {
			return []outboundMessage[any]{h.resultMessage(log, *progress.Result)}
		}
		return []outboundMessage[any]{questionMessage(progress.Snapshot)}

	case "back":
		snap, err := h.service.Back(ctx, user.ID)
		if err != nil {
			return h.failure(log, "previous question", err)
		}
		return []outboundMessage[any]{questionMessage(snap)}

	case "current":
		snap, err := h.service.Current(user.ID)
		if err != nil {
			return h.failure(log, "current question", err)
		}
		return []outboundMessage[any]{questionMessage(snap)}

	case "finish":
		result, err := h.service.Finish(ctx, user.ID)
		if err != nil {
			return h.failure(log, "finish quiz", err)
		}
		return []outboundMessage[any]{h.resultMessage(log, result)}
	}
	return errorMessages("unsupported message type")
}

func (h *WSHandler) ready(ctx context.Context, user domain.User) outboundMessage[any] {
	payload := readyPayload{Username: user.Username, Continents: make([]continentCount, 0, len(domain.Continents()))}
	for _, c := range domain.Continents() {
		n, err := h.service.CountQuestions(ctx, domain.OnlyContinent(c))
		if err != nil {
			h.log.Warn("count questions", zap.Stringer("continent", c), zap.Error(err))
		}
		payload.Total += n
		payload.Continents = append(payload.Continents, continentCount{Name: c.String(), Emoji: c.Emoji(), Questions: n})
	}
	return outboundMessage[any]{Type: "ready", Payload: payload}
}

// failure reports err to the client. Player mistakes are expected; anything else is logged.
func (h *WSHandler) failure(log *zap.Logger, op string, err error) []outboundMessage[any] {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, app.ErrSessionNotFound),
		errors.Is(err, app.ErrInvalidState),
		errors.Is(err, app.ErrAtFirstQuestion),
		errors.Is(err, app.ErrInvalidAnswer),
		errors.Is(err, domain.ErrEmptyPool),
		errors.As(err, &verr):
	default:
		log.Error(op, zap.Error(err))
	}
	return errorMessages(err.Error())
}

func (h *WSHandler) resultMessage(log *zap.Logger, r domain.QuizResult) outboundMessage[any] {
	h.metrics.QuizzesCompleted.WithLabelValues(r.Grade()).Inc()
	log.Info("quiz completed", zap.Int("correct", r.CorrectAnswers), zap.Int("total", r.TotalQuestions), zap.String("grade", r.Grade()))
	return outboundMessage[any]{Type: "result", Payload: resultPayload{
		ResultID:   r.ID,
		Total:      r.TotalQuestions,
		Correct:    r.CorrectAnswers,
		Wrong:      r.WrongAnswers(),
		Percentage: r.Percentage(),
		Grade:      r.Grade(),
		Message:    r.PerformanceMessage(),
		TimeTaken:  r.TimeTakenFormatted(),
		Continent:  r.ContinentName,
	}}
}

func questionMessage(snap app.Snapshot) outboundMessage[any] {
	q := snap.Question
	payload := questionPayload{
		Index:          snap.Index,
		Total:          snap.Total,
		QuestionID:     q.ID(),
		QuestionType:   q.Type().String(),
		Continent:      q.Continent().String(),
		Text:           q.Text(),
		Display:        q.DisplayText(),
		Answered:       snap.Answered,
		ElapsedSeconds: int(snap.Elapsed.Seconds()),
	}
	if mc, ok := q.(*domain.MultipleChoice); ok {
		payload.Options = mc.Options()
	}
	return outboundMessage[any]{Type: "question", Payload: payload}
}

func errorMessages(message string) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: message}}}
}
