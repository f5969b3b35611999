package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/safetyquiz/internal/imagestore"
	"github.com/abhisek/safetyquiz/internal/records"
	"github.com/abhisek/safetyquiz/internal/report"
)

type questionJSON struct {
	ID            string `json:"id"`
	ScenarioTitle string `json:"scenario_title"`
	QuestionText  string `json:"question_text"`
	ImageEnabled  bool   `json:"image_enabled"`
	ImagePrompt   string `json:"image_prompt"`
	HasImage      bool   `json:"has_image"`
}

type questionsResponse struct {
	PassingScore int            `json:"passing_score"`
	TimeLimit    int            `json:"time_limit"`
	Questions    []questionJSON `json:"questions"`
}

func (a *api) listQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := a.Questions.ListQuestions()
	if err != nil {
		// Defaults are still returned; the diagnostic is only logged.
		a.Logger.Warn("load questions", "component", "httpapi", "error", err)
	}
	passing, limit := a.Questions.Settings()
	resp := questionsResponse{PassingScore: passing, TimeLimit: limit, Questions: make([]questionJSON, 0, len(qs))}
	for _, q := range qs {
		resp.Questions = append(resp.Questions, questionJSON{
			ID:            q.ID,
			ScenarioTitle: q.Title(),
			QuestionText:  q.QuestionText,
			ImageEnabled:  q.ImageEnabled,
			ImagePrompt:   q.ImagePrompt,
			HasImage:      a.Images != nil && a.Images.Exists(q.ID),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) questionImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if a.Images == nil {
		writeError(w, http.StatusNotFound, imagestore.ErrNoImage.Error())
		return
	}
	data, _, err := a.Images.Load(id)
	switch {
	case errors.Is(err, imagestore.ErrNoImage), errors.Is(err, imagestore.ErrInvalidID):
		writeError(w, http.StatusNotFound, "no image saved for "+id)
		return
	case err != nil:
		a.Logger.Error("load image", "component", "httpapi", "question", id, "error", err)
		writeError(w, http.StatusInternalServerError, "image could not be read")
		return
	}
	w.Header().Set("Content-Type", imagestore.ContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

type resultJSON struct {
	Unit           string    `json:"unit"`
	Company        string    `json:"coy"`
	Platoon        string    `json:"platoon"`
	RankName       string    `json:"rank_name"`
	TelegramHandle string    `json:"telegram_handle"`
	Answer         string    `json:"answer"`
	Score          int       `json:"score"`
	Strength       string    `json:"strength"`
	Weakness       string    `json:"weakness"`
	Improvement    string    `json:"improvement"`
	Timestamp      time.Time `json:"timestamp"`
}

// loadResults writes the response itself when the records cannot be
// listed and reports false.
func (a *api) loadResults(w http.ResponseWriter) ([]records.Record, bool) {
	recs, err := a.Results.List()
	switch {
	case errors.Is(err, records.ErrNoData):
		writeError(w, http.StatusNotFound, report.NoDataMessage)
		return nil, false
	case err != nil:
		a.Logger.Error("load results", "component", "httpapi", "error", err)
		writeError(w, http.StatusInternalServerError, "results could not be read")
		return nil, false
	}
	return recs, true
}

func (a *api) listResults(w http.ResponseWriter, r *http.Request) {
	recs, ok := a.loadResults(w)
	if !ok {
		return
	}
	out := make([]resultJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, resultJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

type completionJSON struct {
	Label   string  `json:"label"`
	Unit    string  `json:"unit"`
	Company string  `json:"coy"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type completionResponse struct {
	Target    int              `json:"target"`
	Companies []completionJSON `json:"companies"`
	Message   string           `json:"message,omitempty"`
}

func (a *api) completion(w http.ResponseWriter, r *http.Request) {
	recs, err := a.Results.List()
	if err != nil && !errors.Is(err, records.ErrNoData) {
		a.Logger.Error("load results", "component", "httpapi", "error", err)
		writeError(w, http.StatusInternalServerError, "results could not be read")
		return
	}
	rows := report.CompletionByCompany(recs)
	resp := completionResponse{Target: report.TargetPerCompany, Companies: make([]completionJSON, 0, len(rows))}
	for _, c := range rows {
		resp.Companies = append(resp.Companies, completionJSON{
			Label: c.Label(), Unit: c.Unit, Company: c.Company, Count: c.Count, Percent: c.Percent(),
		})
	}
	if len(rows) == 0 {
		resp.Message = report.NoChartMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) export(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	recs, ok := a.loadResults(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format, recs, a.Now()); err != nil {
		a.Logger.Error("export results", "component", "httpapi", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="participants.%s"`, format))
	_, _ = w.Write(buf.Bytes())
}
