// internal/interfaces/http/handlers/location.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/config"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/sirupsen/logrus"
)

// LocationHandler handles department, delivery and detection endpoints
type LocationHandler struct {
	table     *location.Table
	estimator *location.Estimator
	detector  *location.Detector
	tracker   *location.Tracker
	config    *config.Config
	logger    *logrus.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(table *location.Table, estimator *location.Estimator, detector *location.Detector, tracker *location.Tracker, cfg *config.Config, logger *logrus.Logger) *LocationHandler {
	return &LocationHandler{
		table:     table,
		estimator: estimator,
		detector:  detector,
		tracker:   tracker,
		config:    cfg,
		logger:    logger,
	}
}

// DepartmentDetail is a department with its current delivery promise
type DepartmentDetail struct {
	location.Department
	Estimate location.DeliveryEstimate `json:"estimate"`
}

// DetectionResponse is the outcome of a detection request
type DetectionResponse struct {
	Detected  bool                       `json:"detected"`
	Detection *location.Detection        `json:"detection,omitempty"`
	Estimate  *location.DeliveryEstimate `json:"estimate,omitempty"`
}

// GetDepartments handles GET /locations/departments
func (h *LocationHandler) GetDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Departments retrieved successfully",
		"data": gin.H{
			"departments":             h.table.Departments(),
			"free_shipping_threshold": h.config.Store.FreeShippingThreshold,
		},
	})
}

// GetDepartment handles GET /locations/departments/:key
func (h *LocationHandler) GetDepartment(c *gin.Context) {
	d, ok := h.table.Lookup(c.Param("key"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Department not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Department retrieved successfully",
		"data": DepartmentDetail{
			Department: d,
			Estimate:   h.estimator.Estimate(d),
		},
	})
}

// DetectLocation handles POST /locations/detect. Detection is best-effort: a
// miss is a normal 200 answer with detected=false.
func (h *LocationHandler) DetectLocation(c *gin.Context) {
	var req location.DetectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}
	req.IP = c.ClientIP()

	sessionID := getOrCreateSessionID(c, h.config)
	generation := h.tracker.Begin(sessionID)

	detection, found := h.detector.Detect(c.Request.Context(), req)
	if found && !h.tracker.Commit(sessionID, generation, detection) {
		h.logger.WithField("session_id", sessionID).Debug("Discarding superseded location detection")
		detection, found = h.tracker.Current(sessionID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location detection completed",
		"data":    h.detectionResponse(detection, found),
	})
}

// GetDetectedLocation handles GET /locations/detected
func (h *LocationHandler) GetDetectedLocation(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)
	detection, found := h.tracker.Current(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Detected location retrieved successfully",
		"data":    h.detectionResponse(detection, found),
	})
}

func (h *LocationHandler) detectionResponse(d *location.Detection, found bool) DetectionResponse {
	if !found || d == nil {
		return DetectionResponse{}
	}
	est := h.estimator.Estimate(d.Department)
	return DetectionResponse{Detected: true, Detection: d, Estimate: &est}
}
