package middleware

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	localAuditBefore = "audit_before"
	localAuditAfter  = "audit_after"
	localAuditID     = "audit_resource_id"
)

// RecordChange lets a handler hand the audit middleware the state of the
// resource before and after a mutation. Either side may be nil.
func RecordChange(c *fiber.Ctx, resourceID uint, before, after interface{}) {
	c.Locals(localAuditID, resourceID)
	if before != nil {
		c.Locals(localAuditBefore, before)
	}
	if after != nil {
		c.Locals(localAuditAfter, after)
	}
}

// AuditLogger writes AdminAuditLog rows for admin mutations
type AuditLogger struct {
	db  *gorm.DB
	log *logger.Logger
	wg  sync.WaitGroup
}

// NewAuditLogger creates an audit logger
func NewAuditLogger(db *gorm.DB, log *logger.Logger) *AuditLogger {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditLogger{db: db, log: log}
}

// Audit records the wrapped handler's outcome under action/resource. Only
// successful mutations are written. Rows are inserted off the request path.
func (a *AuditLogger) Audit(action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil || status >= fiber.StatusBadRequest {
			return err
		}

		adminID, ok := GetUserID(c)
		if !ok {
			return err
		}

		resourceID, _ := c.Locals(localAuditID).(uint)
		if resourceID == 0 {
			if id, perr := strconv.ParseUint(c.Params("id"), 10, 64); perr == nil {
				resourceID = uint(id)
			}
		}

		// fiber reuses the context once the handler returns
		entry := model.AdminAuditLog{
			AdminID:     adminID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			OldValue:    toJSON(c.Locals(localAuditBefore)),
			NewValue:    toJSON(c.Locals(localAuditAfter)),
			StatusCode:  status,
			IPAddress:   c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			Description: c.Method() + " " + c.OriginalURL(),
		}

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if dbErr := a.db.Create(&entry).Error; dbErr != nil {
				a.log.Error("failed to write audit log", "action", action, "resource_id", resourceID, "error", dbErr)
			}
		}()

		return err
	}
}

// Wait blocks until pending audit writes finish
func (a *AuditLogger) Wait() {
	a.wg.Wait()
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
