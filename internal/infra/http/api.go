package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/id"
	"github.com/Spok95/material-kiosk/internal/importer"
	"github.com/Spok95/material-kiosk/internal/stock"
	"github.com/Spok95/material-kiosk/internal/xlsx"
)

const maxUploadBytes = 32 << 20

// API exposes the ledger engine and the import processor over JSON.
type API struct {
	log       *slog.Logger
	svc       *stock.Service
	imp       *importer.Processor
	validator *validator.Validate
	rateLimit func(http.Handler) http.Handler
	now       func() time.Time
}

// NewAPI builds the handler set. importsPerMinute limits uploads per client IP.
func NewAPI(log *slog.Logger, svc *stock.Service, imp *importer.Processor, importsPerMinute int) *API {
	if importsPerMinute <= 0 {
		importsPerMinute = 5
	}
	return &API{
		log:       log,
		svc:       svc,
		imp:       imp,
		validator: validator.New(),
		rateLimit: httprate.LimitByIP(importsPerMinute, time.Minute),
		now:       time.Now,
	}
}

// WithClock sets the clock used for export file names.
func (a *API) WithClock(now func() time.Time) *API {
	a.now = now
	return a
}

func (a *API) MountRoutes(r chi.Router) {
	r.Get("/materials", a.listMaterials)
	r.Post("/materials", a.registerMaterial)
	r.Delete("/materials/{id}", a.deleteMaterial)
	r.Post("/materials/{id}/movements", a.recordMovement)

	r.Get("/entries", a.listEntries)
	r.Patch("/entries/{id}", a.editEntry)
	r.Delete("/entries/{id}", a.deleteEntry)

	r.With(a.rateLimit).Post("/import", a.importWorkbook)
	r.Get("/export/stock", a.exportStock)
	r.Get("/export/ledger", a.exportLedger)
	r.Get("/audit", a.audit)
}

func (a *API) listMaterials(w http.ResponseWriter, r *http.Request) {
	group, err := groupParam(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	var ms = toMaterials(nil)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		found, err := a.svc.FindMaterials(r.Context(), q)
		if err != nil {
			writeError(w, a.log, err)
			return
		}
		for _, m := range found {
			if group == "" || m.Group == group {
				ms = append(ms, toMaterial(m))
			}
		}
	} else {
		found, err := a.svc.ListMaterials(r.Context(), group)
		if err != nil {
			writeError(w, a.log, err)
			return
		}
		ms = toMaterials(found)
	}
	writeJSON(w, http.StatusOK, ms)
}

func (a *API) registerMaterial(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	group, err := catalog.ParseGroup(req.Group)
	if err != nil {
		writeError(w, a.log, apperror.NewValidation(err.Error()).WithDetail("group", req.Group))
		return
	}
	m, err := a.svc.Register(r.Context(), stock.RegisterInput{
		Group:     group,
		Major:     req.Major,
		Minor:     req.Minor,
		Code:      req.Code,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Icon:      req.Icon,
	})
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMaterial(*m))
}

func (a *API) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	materialID, err := pathID(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.svc.DeleteMaterial(r.Context(), materialID); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) recordMovement(w http.ResponseWriter, r *http.Request) {
	materialID, err := pathID(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	var req movementRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	in := stock.MovementInput{
		Type:     ledger.MoveType(req.Type),
		Quantity: req.Quantity,
		Actor:    req.Actor,
		Note:     req.Note,
	}
	if req.Date != "" {
		// the validator already checked the layout
		in.Date, _ = ledger.ParseDate(req.Date)
	}
	m, err := a.svc.GetMaterial(r.Context(), materialID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	e, err := a.svc.RecordMovement(r.Context(), *m, in)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntry(*e))
}

func (a *API) listEntries(w http.ResponseWriter, r *http.Request) {
	f, err := entryFilter(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	es, err := a.svc.ListEntries(r.Context(), f)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntries(es))
}

func (a *API) editEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	var req entryPatchRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if (req.Quantity == nil) == (req.Field == "") {
		writeError(w, a.log, apperror.NewValidation("send either quantity or field and value"))
		return
	}
	if req.Field != "" && req.Value == nil {
		writeError(w, a.log, apperror.NewValidation("value is required with field").WithDetail("field", req.Field))
		return
	}
	e, err := a.svc.GetEntry(r.Context(), entryID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if req.Quantity != nil {
		e, err = a.svc.EditEntryQuantity(r.Context(), *e, *req.Quantity)
	} else {
		e, err = a.svc.EditEntryField(r.Context(), *e, req.Field, *req.Value)
	}
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntry(*e))
}

func (a *API) deleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	e, err := a.svc.GetEntry(r.Context(), entryID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.svc.DeleteEntry(r.Context(), *e); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) importWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, a.log, apperror.NewImportRead(err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, a.log, apperror.NewValidation("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	a.log.Info("import upload", "file", header.Filename, "size", header.Size)
	sum, err := a.imp.ImportWorkbook(r.Context(), file)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toImport(sum))
}

func (a *API) exportStock(w http.ResponseWriter, r *http.Request) {
	ms, err := a.svc.ListMaterials(r.Context(), "")
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	var buf bytes.Buffer
	if err := xlsx.WriteStock(&buf, ms); err != nil {
		writeError(w, a.log, err)
		return
	}
	writeAttachment(w, xlsx.StockFileName(a.now()), &buf)
}

func (a *API) exportLedger(w http.ResponseWriter, r *http.Request) {
	f, err := entryFilter(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	switch {
	case f.Year == 0 && f.Month == 0:
		now := a.now()
		f.Year, f.Month = now.Year(), int(now.Month())
	case f.Year == 0 || f.Month == 0:
		writeError(w, a.log, apperror.NewValidation("year and month go together"))
		return
	}
	es, err := a.svc.ListEntries(r.Context(), f)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	var buf bytes.Buffer
	if err := xlsx.WriteLedger(&buf, es); err != nil {
		writeError(w, a.log, err)
		return
	}
	writeAttachment(w, xlsx.LedgerFileName(f.Year, f.Month), &buf)
}

func (a *API) audit(w http.ResponseWriter, r *http.Request) {
	report, err := a.svc.Audit(r.Context())
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAudit(report))
}

// decode reads a JSON body into dst and runs struct validation on it.
func (a *API) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidation("malformed JSON body").WithDetail("reason", err.Error())
	}
	if err := a.validator.Struct(dst); err != nil {
		appErr := apperror.NewValidation("invalid request")
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				appErr.WithDetail(strings.ToLower(fe.Field()), fe.Tag())
			}
		}
		return appErr
	}
	return nil
}

func pathID(r *http.Request) (id.ID, error) {
	raw := chi.URLParam(r, "id")
	v, err := id.Parse(raw)
	if err != nil {
		return id.ID{}, apperror.NewValidation("malformed id").WithDetail("id", raw)
	}
	return v, nil
}

func groupParam(r *http.Request) (catalog.Group, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("group"))
	if raw == "" {
		return "", nil
	}
	g, err := catalog.ParseGroup(raw)
	if err != nil {
		return "", apperror.NewValidation(err.Error()).WithDetail("group", raw)
	}
	return g, nil
}

func entryFilter(r *http.Request) (ledger.Filter, error) {
	var f ledger.Filter
	q := r.URL.Query()
	group, err := groupParam(r)
	if err != nil {
		return f, err
	}
	f.Group = group
	if raw := q.Get("year"); raw != "" {
		if f.Year, err = strconv.Atoi(raw); err != nil || f.Year < 1 {
			return f, apperror.NewValidation("year must be a positive integer").WithDetail("year", raw)
		}
	}
	if raw := q.Get("month"); raw != "" {
		if f.Month, err = strconv.Atoi(raw); err != nil || f.Month < 1 || f.Month > 12 {
			return f, apperror.NewValidation("month must be between 1 and 12").WithDetail("month", raw)
		}
	}
	if raw := q.Get("material_id"); raw != "" {
		materialID, err := id.Parse(raw)
		if err != nil {
			return f, apperror.NewValidation("malformed material_id").WithDetail("material_id", raw)
		}
		f.MaterialID = &materialID
	}
	return f, nil
}
