package handler

import (
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shiftpay/pos-ledger/internal/api_gateway/service"
	"github.com/shiftpay/pos-ledger/internal/domain/payroll"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// PayrollHandler handles HTTP requests for salary rules, shift rosters and
// evaluated salary records
type PayrollHandler struct {
	payrollService service.PayrollService
	logger         *slog.Logger
}

// NewPayrollHandler creates a new payroll handler
func NewPayrollHandler(logger *slog.Logger, payrollService service.PayrollService) *PayrollHandler {
	return &PayrollHandler{
		payrollService: payrollService,
		logger:         logger,
	}
}

// CreateRule creates a new salary rule
func (h *PayrollHandler) CreateRule(c *gin.Context) {
	var req SalaryRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rule := mapRequestToRule(&req)
	if err := h.payrollService.CreateRule(c.Request.Context(), rule); err != nil {
		h.logger.Error("Failed to create salary rule", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapRuleToResponse(rule))
}

// GetRuleByID retrieves a salary rule, returns 404 if not found
func (h *PayrollHandler) GetRuleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rule, err := h.payrollService.GetRuleByID(c.Request.Context(), id)
	if err != nil {
		var ruleNotFound payroll.ErrRuleNotFound
		if errors.As(err, &ruleNotFound) {
			RespondNotFound(c, "Salary rule not found")
			return
		}
		h.logger.Error("Failed to get salary rule", "rule_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRuleToResponse(rule))
}

// ListRules retrieves all salary rules
func (h *PayrollHandler) ListRules(c *gin.Context) {
	rules, err := h.payrollService.ListRules(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list salary rules", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]SalaryRuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, mapRuleToResponse(&rules[i]))
	}
	RespondOK(c, responses)
}

// UpdateRule replaces a salary rule and its associations
func (h *PayrollHandler) UpdateRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SalaryRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rule := mapRequestToRule(&req)
	rule.ID = id
	if err := h.payrollService.UpdateRule(c.Request.Context(), rule); err != nil {
		var ruleNotFound payroll.ErrRuleNotFound
		if errors.As(err, &ruleNotFound) {
			RespondNotFound(c, "Salary rule not found")
			return
		}
		h.logger.Error("Failed to update salary rule", "rule_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRuleToResponse(rule))
}

// DeleteRule removes a salary rule
func (h *PayrollHandler) DeleteRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.payrollService.DeleteRule(c.Request.Context(), id); err != nil {
		var ruleNotFound payroll.ErrRuleNotFound
		if errors.As(err, &ruleNotFound) {
			RespondNotFound(c, "Salary rule not found")
			return
		}
		h.logger.Error("Failed to delete salary rule", "rule_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// AssignRoster puts an employee on a shift's roster
func (h *PayrollHandler) AssignRoster(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "shift_id")
	if !ok {
		return
	}

	var req AssignRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry := &payroll.RosterEntry{
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		RoleID:       req.RoleID,
		PayGroupID:   req.PayGroupID,
	}
	if err := h.payrollService.AssignRosterEntry(c.Request.Context(), shiftID, entry); err != nil {
		h.logger.Error("Failed to assign roster entry",
			"shift_id", shiftID,
			"employee_id", req.EmployeeID,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapRosterEntryToResponse(entry))
}

// RemoveRoster takes an employee off a shift's roster
func (h *PayrollHandler) RemoveRoster(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "shift_id")
	if !ok {
		return
	}
	employeeID, ok := parseIDParam(c, "employee_id")
	if !ok {
		return
	}

	if err := h.payrollService.RemoveRosterEntry(c.Request.Context(), shiftID, employeeID); err != nil {
		h.logger.Error("Failed to remove roster entry",
			"shift_id", shiftID,
			"employee_id", employeeID,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// ListRoster retrieves the roster for a shift
func (h *PayrollHandler) ListRoster(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "shift_id")
	if !ok {
		return
	}

	roster, err := h.payrollService.ListRoster(c.Request.Context(), shiftID)
	if err != nil {
		h.logger.Error("Failed to list roster", "shift_id", shiftID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]RosterEntryResponse, 0, len(roster))
	for i := range roster {
		responses = append(responses, mapRosterEntryToResponse(&roster[i]))
	}
	RespondOK(c, responses)
}

// GetSalariesByShift retrieves evaluated salary records for a shift
func (h *PayrollHandler) GetSalariesByShift(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "shift_id")
	if !ok {
		return
	}

	records, err := h.payrollService.GetSalariesByShift(c.Request.Context(), shiftID)
	if err != nil {
		h.logger.Error("Failed to get salaries", "shift_id", shiftID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRecordsToResponses(records))
}

// GetSalariesByDate retrieves evaluated salary records for a business day
func (h *PayrollHandler) GetSalariesByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		RespondBadRequest(c, "Missing required query parameter: date")
		return
	}

	records, err := h.payrollService.GetSalariesByDate(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidDate) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to get salaries", "date", date, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRecordsToResponses(records))
}

// SetWriteOff records a manual write-off and comment on a salary record
func (h *PayrollHandler) SetWriteOff(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.payrollService.SetWriteOff(c.Request.Context(), id, req.WriteOff, req.Comment); err != nil {
		var recordNotFound payroll.ErrRecordNotFound
		if errors.As(err, &recordNotFound) {
			RespondNotFound(c, "Salary record not found")
			return
		}
		h.logger.Error("Failed to set write-off", "record_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// parseIDParam parses a positive integer path parameter, responding with 400
// on failure
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	param := c.Param(name)
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// mapRequestToRule maps a salary rule request DTO to the domain rule
func mapRequestToRule(req *SalaryRuleRequest) *payroll.SalaryRule {
	workshops := make(map[int64]struct{}, len(req.Workshops))
	for _, id := range req.Workshops {
		workshops[id] = struct{}{}
	}
	return &payroll.SalaryRule{
		RoleID:         req.RoleID,
		Percent:        req.Percent,
		FixedPerShift:  req.FixedPerShift,
		Workshops:      workshops,
		ProductBonuses: req.ProductBonuses,
	}
}

// mapRuleToResponse maps a domain salary rule to its response DTO
func mapRuleToResponse(rule *payroll.SalaryRule) SalaryRuleResponse {
	workshops := make([]int64, 0, len(rule.Workshops))
	for id := range rule.Workshops {
		workshops = append(workshops, id)
	}
	sort.Slice(workshops, func(i, j int) bool { return workshops[i] < workshops[j] })

	return SalaryRuleResponse{
		ID:             rule.ID,
		RoleID:         rule.RoleID,
		Percent:        rule.Percent,
		FixedPerShift:  rule.FixedPerShift,
		Workshops:      workshops,
		ProductBonuses: rule.ProductBonuses,
	}
}

// mapRosterEntryToResponse maps a roster entry to its response DTO
func mapRosterEntryToResponse(entry *payroll.RosterEntry) RosterEntryResponse {
	return RosterEntryResponse{
		EmployeeID:   entry.EmployeeID,
		EmployeeName: entry.EmployeeName,
		RoleID:       entry.RoleID,
		PayGroupID:   entry.PayGroupID,
		PayGroupName: entry.PayGroupName,
	}
}

// mapRecordsToResponses maps salary records to response DTOs
func mapRecordsToResponses(records []payroll.SalaryRecord) []SalaryRecordResponse {
	responses := make([]SalaryRecordResponse, 0, len(records))
	for i := range records {
		r := &records[i]
		breakdown := make([]BonusLineDTO, 0, len(r.BonusBreakdown))
		for _, line := range r.BonusBreakdown {
			breakdown = append(breakdown, BonusLineDTO{
				ProductName: line.ProductName,
				Count:       line.Count,
				Total:       line.Total,
			})
		}
		responses = append(responses, SalaryRecordResponse{
			ID:             r.ID,
			ShiftID:        r.ShiftID,
			Date:           r.Date,
			EmployeeID:     r.EmployeeID,
			EmployeeName:   r.EmployeeName,
			Fixed:          r.Fixed,
			Percent:        r.Percent,
			Bonus:          r.Bonus,
			Total:          r.Total,
			BonusBreakdown: breakdown,
			WriteOff:       r.WriteOff,
			Comment:        r.Comment,
		})
	}
	return responses
}
