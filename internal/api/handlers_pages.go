package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/lox/raincheck/internal/i18n"
	"github.com/lox/raincheck/internal/models"
)

func requestLanguage(r *http.Request) language.Tag {
	return i18n.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	lang := requestLanguage(r)
	page := newIndexPage(lang, i18n.Printer(lang), models.DefaultObservation(s.clock.Now()))
	s.render(w, http.StatusOK, page)
}

func (s *Server) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	lang := requestLanguage(r)
	printer := i18n.Printer(lang)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	obs, err := parseValues(r.PostForm, s.clock.Now())
	if err == nil {
		var pred models.Prediction
		pred, err = s.predict(r.Context(), obs, "form")
		if err == nil {
			page := newIndexPage(lang, printer, obs)
			page.Result = s.resultView(r, lang, obs, pred)
			s.render(w, http.StatusOK, page)
			return
		}
	}

	page := newIndexPage(lang, printer, obs)
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		page.Errors = problemMessages(printer, verr.Problems)
		s.render(w, http.StatusBadRequest, page)
		return
	}
	http.Error(w, "prediction failed", http.StatusInternalServerError)
}

func (s *Server) resultView(r *http.Request, lang language.Tag, obs models.Observation, pred models.Prediction) *resultView {
	text, err := s.narrator.Narrate(r.Context(), lang, obs, pred)
	if err != nil {
		s.logger.Warn("narrative failed", zap.Error(err))
	}
	return &resultView{
		Label:     pred.Text(),
		Percent:   pred.Percent(),
		WillRain:  pred.WillRain,
		Narrative: text,
		BadgeURL:  badgeURL(obs, lang),
	}
}

func (s *Server) render(w http.ResponseWriter, status int, page indexPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		s.logger.Error("template error", zap.Error(err))
	}
}
