package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"exohab/db"
	"exohab/ml"
	"exohab/monitoring"
)

const (
	wsReadLimit    = 4096
	wsWriteTimeout = 10 * time.Second
	wsIdleTimeout  = 2 * time.Minute
)

// predictError is the body of a rejected prediction.
type predictError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// handlePredict accepts a JSON object (numbers or numeric strings) or a
// urlencoded form with the fields radius, temp, flux and star_temp.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	fields, err := requestFields(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, status, body := s.predict(fields)
	if body != nil {
		respondJSON(w, status, body)
		return
	}

	s.recordPrediction(r, fields, result, "http")
	respondJSON(w, http.StatusOK, result)
}

// predict maps predictor errors onto a status and error body.
func (s *Server) predict(fields map[string]string) (*ml.Prediction, int, *predictError) {
	result, err := s.deps.Predictor.PredictFields(fields)
	if err == nil {
		if result.Class == ml.LabelHabitable {
			s.deps.Metrics.Incr(monitoring.PredictionsHabitable)
		} else {
			s.deps.Metrics.Incr(monitoring.PredictionsUninhabitable)
		}
		return result, http.StatusOK, nil
	}

	var verr *ml.ValidationError
	switch {
	case errors.Is(err, ml.ErrModelUnavailable):
		s.deps.Metrics.Incr(monitoring.PredictionsUnavailable)
		return nil, http.StatusServiceUnavailable, &predictError{Error: ml.ErrModelUnavailable.Error()}
	case errors.As(err, &verr):
		s.deps.Metrics.Incr(monitoring.PredictionsRejected)
		return nil, http.StatusBadRequest, &predictError{Error: verr.Error(), Field: verr.Field}
	default:
		s.logger.Error("prediction failed", zap.Error(err))
		return nil, http.StatusInternalServerError, &predictError{Error: "prediction failed"}
	}
}

// recordPrediction stores the served prediction. Failures are logged only.
func (s *Server) recordPrediction(r *http.Request, fields map[string]string, result *ml.Prediction, source string) {
	if s.deps.Store == nil {
		return
	}
	features, err := ml.ParseFeatures(fields)
	if err != nil {
		return
	}
	rec := db.PredictionRecord{
		Radius:         features.Radius,
		EqTemp:         features.EqTemp,
		Insolation:     features.Insolation,
		StellarTemp:    features.StellarTemp,
		PredictedLabel: result.Class,
		Probability:    result.Probability,
		Source:         source,
	}
	if err := s.deps.Store.SavePrediction(rec); err != nil {
		s.logger.Warn("save prediction",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
	}
}

func requestFields(r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, errors.New("invalid form body")
		}
		fields := make(map[string]string, len(ml.FieldNames()))
		for _, name := range ml.FieldNames() {
			if _, ok := r.PostForm[name]; ok {
				fields[name] = r.PostForm.Get(name)
			}
		}
		return fields, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		return nil, errors.New("request body too large or unreadable")
	}
	return decodeFields(buf.Bytes())
}

// decodeFields reads a JSON object and renders each known field as text,
// so numbers and numeric strings go through the same parser.
func decodeFields(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, errors.New("request body must be a JSON object")
	}

	fields := make(map[string]string, len(ml.FieldNames()))
	for _, name := range ml.FieldNames() {
		v, ok := body[name]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case json.Number:
			fields[name] = t.String()
		case string:
			fields[name] = t
		default:
			fields[name] = fmt.Sprint(t)
		}
	}
	return fields, nil
}

// handlePredictWS answers each JSON message with one prediction or error.
func (s *Server) handlePredictWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var reply interface{}
		fields, err := decodeFields(message)
		if err != nil {
			reply = predictError{Error: err.Error()}
		} else if result, _, perr := s.predict(fields); perr != nil {
			reply = perr
		} else {
			s.recordPrediction(r, fields, result, "websocket")
			reply = result
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("websocket write", zap.Error(err))
			return
		}
	}
}
