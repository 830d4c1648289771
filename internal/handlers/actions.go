package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jwebster45206/campus-quest/pkg/game"
)

// ActionRequest carries the fields used by the various actions. Each action
// reads only the ones it needs.
type ActionRequest struct {
	Floor    int    `json:"floor,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Player   *int   `json:"player,omitempty"`
	Opponent *int   `json:"opponent,omitempty"`
	Accept   *bool  `json:"accept,omitempty"`
	Choice   string `json:"choice,omitempty"`
}

func (h *GamesHandler) handleAction(w http.ResponseWriter, r *http.Request, s *game.Session, action game.Action) {
	var req ActionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid action request body", "action", action, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	var (
		res *game.Result
		err error
	)
	switch action {
	case game.ActionFloor:
		res, err = s.SelectFloor(ctx, req.Floor)
	case game.ActionCode:
		res, err = s.SubmitCode(ctx, req.Answer)
	case game.ActionSquash:
		switch {
		case req.Player == nil && req.Opponent == nil:
			res, err = s.PlaySquash(ctx)
		case req.Player != nil && req.Opponent != nil:
			res, err = s.ResolveSquash(ctx, *req.Player, *req.Opponent)
		default:
			writeError(w, h.logger, http.StatusBadRequest, "player and opponent must be given together")
			return
		}
	case game.ActionEscort:
		if req.Accept == nil {
			writeError(w, h.logger, http.StatusBadRequest, "accept is required")
			return
		}
		res, err = s.EscortProfessor(ctx, *req.Accept)
	case game.ActionDecrypt:
		res, err = s.SubmitDecryption(ctx, req.Answer)
	case game.ActionBell:
		res, err = s.AnswerBell(ctx, req.Choice)
	case game.ActionSummon:
		res, err = s.Summon(ctx)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown action: "+string(action))
		return
	}

	if err != nil {
		writeGameError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}
