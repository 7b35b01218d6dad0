package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

func (s *Server) registerRoutes(r gin.IRoutes) {
	// GET /api/today?date=&filter=&q=
	r.GET("/today", s.getToday)
	// GET /api/employees/:uid/month?month=YYYY-MM
	r.GET("/employees/:uid/month", s.getEmployeeMonth)
	// GET /api/log?month=YYYY-MM
	r.GET("/log", s.getLog)
}

type todayResponse struct {
	Date      string                `json:"date"`
	Holiday   bool                  `json:"holiday"`
	Degraded  bool                  `json:"degraded"`
	Filter    attendance.Filter     `json:"filter"`
	Query     string                `json:"query,omitempty"`
	MaxPairs  int                   `json:"maxPairs"`
	KPI       attendance.TodayKPI   `json:"kpi"`
	Rows      []attendance.TodayRow `json:"rows"`
	Generated time.Time             `json:"generated"`
	Cached    bool                  `json:"cached"`
}

type logRowDTO struct {
	UID   string                        `json:"uid"`
	Name  string                        `json:"name"`
	Cells map[string]attendance.LogCell `json:"cells"`
}

type logResponse struct {
	Month   string      `json:"month"`
	Columns []string    `json:"columns"`
	Rows    []logRowDTO `json:"rows"`
}

func (s *Server) getToday(c *gin.Context) {
	filter, err := attendance.ParseFilter(c.Query("filter"))
	if err != nil {
		s.writeError(c, ErrInvalid(err.Error()))
		return
	}

	today := dateutil.StartOfDay(s.dash.Now())
	date := today
	if v := strings.TrimSpace(c.Query("date")); v != "" {
		date, err = dateutil.ParseDate(v, s.dash.Location())
		if err != nil {
			s.writeError(c, ErrInvalid(err.Error()))
			return
		}
	}

	var (
		view   *attendance.TodayView
		cached bool
	)
	if s.snapshots != nil && dateutil.IsSameDay(date, today) {
		view, cached = s.snapshots.Current(date)
	}
	if view == nil {
		view, err = s.dash.Today(c.Request.Context(), date)
		if err != nil {
			s.writeError(c, err)
			return
		}
	}

	query := strings.TrimSpace(c.Query("q"))
	rows := view.Rows(filter, query)
	if rows == nil {
		rows = []attendance.TodayRow{}
	}

	c.JSON(http.StatusOK, todayResponse{
		Date:      dateutil.FormatDate(view.Date),
		Holiday:   view.Holiday,
		Degraded:  view.Degraded,
		Filter:    filter,
		Query:     query,
		MaxPairs:  view.MaxPairs,
		KPI:       view.KPI,
		Rows:      rows,
		Generated: view.Generated,
		Cached:    cached,
	})
}

func (s *Server) getEmployeeMonth(c *gin.Context) {
	uid := strings.TrimSpace(c.Param("uid"))
	if uid == "" {
		s.writeError(c, ErrInvalid("uid is required"))
		return
	}
	month, ok := s.monthParam(c)
	if !ok {
		return
	}

	res, err := s.dash.EmployeeMonth(c.Request.Context(), uid, month)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getLog(c *gin.Context) {
	month, ok := s.monthParam(c)
	if !ok {
		return
	}

	res, err := s.dash.MasterLog(c.Request.Context(), month)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := logResponse{
		Month:   dateutil.FormatMonth(res.Month),
		Columns: res.Columns,
		Rows:    make([]logRowDTO, 0, len(res.Rows)),
	}
	for _, row := range res.Rows {
		dto := logRowDTO{UID: row.UID, Name: row.Name, Cells: make(map[string]attendance.LogCell, len(res.Columns))}
		for _, col := range res.Columns {
			if col == "Name" {
				continue
			}
			dto.Cells[col] = attendance.NormalizeLogValue(row.Cell(col))
		}
		out.Rows = append(out.Rows, dto)
	}
	c.JSON(http.StatusOK, out)
}

// monthParam parses ?month=YYYY-MM; empty means the zero time (current month)
func (s *Server) monthParam(c *gin.Context) (time.Time, bool) {
	v := strings.TrimSpace(c.Query("month"))
	if v == "" {
		return time.Time{}, true
	}
	month, err := dateutil.ParseMonth(v, s.dash.Location())
	if err != nil {
		s.writeError(c, ErrInvalid(err.Error()))
		return time.Time{}, false
	}
	return month, true
}

func (s *Server) writeError(c *gin.Context, err error) {
	api := toAPIError(err)
	status := toHTTPStatus(api.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request error",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", string(api.Code)),
			zap.Error(err))
	}
	c.JSON(status, errorDTO{Error: api})
}
