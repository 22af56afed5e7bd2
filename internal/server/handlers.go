package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nikbrunner/dex/internal/importer"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type importRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type importResponse struct {
	Success  bool   `json:"success"`
	Imported int    `json:"imported"`
	Failed   []int  `json:"failed,omitempty"`
	Message  string `json:"message"`
}

// importEntries handles POST /functions/v1/import-pokemon.
func (s *Server) importEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := importRequest{Start: importer.DefaultStart, End: importer.DefaultEnd}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		sendError(ctx, w, err)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			sendError(ctx, w, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	if req.Start == 0 {
		req.Start = importer.DefaultStart
	}
	if req.End == 0 {
		req.End = importer.DefaultEnd
	}

	res, err := s.importer.ImportRange(ctx, req.Start, req.End, nil)
	if err != nil {
		sendError(ctx, w, err)
		return
	}

	sendJSON(ctx, w, http.StatusOK, importResponse{
		Success:  true,
		Imported: res.Imported,
		Failed:   res.Failed,
		Message:  fmt.Sprintf("Successfully imported Pokemon %d to %d", req.Start, req.End),
	})
}

// sendNotification handles POST /functions/v1/send-pokemon-notification.
func (s *Server) sendNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		sendError(ctx, w, err)
		return
	}

	entry, err := entryFromPayload(body)
	if err != nil {
		sendError(ctx, w, err)
		return
	}

	log.Ctx(ctx).Info().Str("name", entry.Name).Msg("sending notifications")

	res, err := s.notifier.NotifyEntry(ctx, entry, nil)
	if err != nil {
		sendError(ctx, w, err)
		return
	}

	sendJSON(ctx, w, http.StatusOK, res)
}

// entryFromPayload reads the {"pokemon": {...}} body. Only id, name and sprites are
// used to build the email.
func entryFromPayload(body []byte) (model.Entry, error) {
	if len(body) > 0 && !gjson.ValidBytes(body) {
		return model.Entry{}, errors.New("invalid request body")
	}

	p := gjson.GetBytes(body, "pokemon")
	if !p.IsObject() {
		return model.Entry{}, errors.New("Pokemon data is required")
	}

	details := []byte("{}")
	if sprites := p.Get("sprites"); sprites.Exists() {
		var err error
		details, err = sjson.SetRawBytes(details, "sprites", []byte(sprites.Raw))
		if err != nil {
			return model.Entry{}, err
		}
	}

	e := model.NewEntry(model.NewEntryParams{
		ID:      int(p.Get("id").Int()),
		Name:    p.Get("name").String(),
		Details: details,
	})
	if e.Name == "" {
		return model.Entry{}, errors.New("Pokemon name is required")
	}
	return e, nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	sendJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func sendError(ctx context.Context, w http.ResponseWriter, err error) {
	log.Ctx(ctx).Error().Err(err).Msg("function error")
	sendJSON(ctx, w, http.StatusInternalServerError, errorResponse{Success: false, Error: err.Error()})
}

func sendJSON(ctx context.Context, w http.ResponseWriter, status int, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Ctx(ctx).Err(err).Msg("unable to marshal json")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
