package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard/internal/services"
)

type ReportHandler struct {
	service *services.ReportService
	log     *logrus.Logger
}

func NewReportHandler(service *services.ReportService, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{service: service, log: log}
}

func (h *ReportHandler) op(name string) *logrus.Entry {
	return h.log.WithField("operation", "handlers.Report."+name)
}

// WeeklyPDF godoc
// @Summary      Weekly task report as PDF
// @Tags         reports
// @Produce      application/pdf
// @Success      200 {file} file
// @Router       /api/reports/weekly.pdf [get]
func (h *ReportHandler) WeeklyPDF(c *gin.Context) {
	log := h.op("weeklyPDF")
	var buf bytes.Buffer
	if err := h.service.WriteWeekly(c.Request.Context(), &buf); err != nil {
		respondError(c, log, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="weekly-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// EmailWeekly godoc
// @Summary      E-mail the weekly report
// @Description  The recipient must be the configured report address or on the allow-list.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        body body object false "optional {\"to\": \"address\"}"
// @Success      200 {object} map[string]string
// @Failure      400 {object} map[string]string
// @Router       /api/reports/weekly/email [post]
func (h *ReportHandler) EmailWeekly(c *gin.Context) {
	log := h.op("emailWeekly")
	var req struct {
		To string `json:"to"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, log) {
		return
	}

	to, err := h.service.EmailWeekly(c.Request.Context(), req.To)
	if err != nil {
		respondError(c, log, err)
		return
	}
	log.Infof("[report][email][ok] to=%s", to)
	c.JSON(http.StatusOK, gin.H{"message": "Report sent to " + to})
}
