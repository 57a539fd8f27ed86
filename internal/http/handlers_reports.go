package http

import (
	"net/http"
	"strconv"

	"spendwise/internal/core"
)

type exportRequest struct {
	UserID    int64      `json:"userId"`
	StartDate *core.Date `json:"startDate"`
	EndDate   *core.Date `json:"endDate"`
}

type emailReportRequest struct {
	UserID    int64      `json:"userId"`
	Year      int        `json:"year"`
	Month     int        `json:"month"`
	StartDate *core.Date `json:"startDate"`
	EndDate   *core.Date `json:"endDate"`
}

type reportJobRequest struct {
	UserID     int64             `json:"userId"`
	ReportType core.ReportType   `json:"reportType"`
	Format     core.ReportFormat `json:"format"`
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	start, err := queryDate(r, "startDate")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "endDate")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	b, err := s.deps.Analytics.CategoryBreakdown(r.Context(), userID, start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, err := pathInt(r, "year")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := pathInt(r, "month")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rep, err := s.deps.Analytics.MonthlyReport(r.Context(), userID, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleYearlyTrends(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, err := pathInt(r, "year")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trends, err := s.deps.Analytics.YearlyTrends(r.Context(), userID, year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.StartDate == nil || req.EndDate == nil {
		s.writeError(w, r, core.NewValidationError("startDate", "Start and end dates are required"))
		return
	}

	file, err := s.deps.Reports.ExportExcel(r.Context(), req.UserID, *req.StartDate, *req.EndDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", core.XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// handleEmailReport mails the monthly workbook, or a date-range workbook
// when both startDate and endDate are given.
func (s *Server) handleEmailReport(w http.ResponseWriter, r *http.Request) {
	var req emailReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		res any
		err error
	)
	if req.StartDate != nil && req.EndDate != nil {
		res, err = s.deps.Reports.EmailExpenseReport(r.Context(), req.UserID, *req.StartDate, *req.EndDate)
	} else {
		res, err = s.deps.Reports.EmailMonthlyReport(r.Context(), req.UserID, req.Year, req.Month)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateReportJob(w http.ResponseWriter, r *http.Request) {
	var req reportJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.deps.Reports.CreateJob(r.Context(), req.UserID, req.ReportType, req.Format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetReportJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.deps.Reports.GetJob(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListReportJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobs, err := s.deps.Reports.ListJobs(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []core.ReportJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	alerts, err := s.deps.Alerts.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []core.BudgetAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}
