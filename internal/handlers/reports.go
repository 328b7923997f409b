package handlers

import (
	"io"
	"net/http"
	"strconv"

	"hotel_ops/internal/service"

	"github.com/gin-gonic/gin"
)

const maxPhotoBytes = 8 << 20

// createReportForm is accepted as JSON or as multipart with an optional
// "photo" file part.
type createReportForm struct {
	RoomNumber      string `form:"room_number" json:"room_number"`
	Location        string `form:"location" json:"location"`
	IsGeneralReport bool   `form:"is_general_report" json:"is_general_report"`
	Description     string `form:"description" json:"description"`
	Priority        string `form:"priority" json:"priority"`
	EmployeeName    string `form:"employee_name" json:"employee_name"`
}

// @Summary      List problem reports
// @Tags         reports
// @Produce      json
// @Param        unresolved  query  bool  false  "Only unresolved reports"
// @Success      200  {object}  map[string]interface{}  "count, reports"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/reports [get]
func (h *Handler) listReports(c *gin.Context) {
	unresolved, _ := strconv.ParseBool(c.Query("unresolved"))
	reports, err := h.services.Reports.List(c.Request.Context(), service.ReportFilter{UnresolvedOnly: unresolved})
	if err != nil {
		h.serviceError(c, err, "failed to load reports", "reports_list_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(reports), "reports": reports})
}

// @Summary      Create problem report
// @Description  Priority is derived from the description when omitted.
// @Tags         reports
// @Accept       json,mpfd
// @Produce      json
// @Param        photo  formData  file  false  "JPEG photo"
// @Success      201  {object}  models.ProblemReport
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/reports [post]
func (h *Handler) createReport(c *gin.Context) {
	var form createReportForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	params := service.CreateReportParams{
		RoomNumber:      form.RoomNumber,
		Location:        form.Location,
		IsGeneralReport: form.IsGeneralReport,
		Description:     form.Description,
		Priority:        form.Priority,
		EmployeeName:    form.EmployeeName,
	}

	if fh, err := c.FormFile("photo"); err == nil {
		if fh.Size > maxPhotoBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable photo"})
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
		_ = f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable photo"})
			return
		}
		params.Photo = data
		params.PhotoContentType = fh.Header.Get("Content-Type")
	}

	report, err := h.services.Reports.Create(c.Request.Context(), params)
	if err != nil {
		h.serviceError(c, err, "failed to create report", "report_create_failed")
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) resolveReport(c *gin.Context) {
	report, err := h.services.Reports.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "failed to resolve report", "report_resolve_failed", "report_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, report)
}
