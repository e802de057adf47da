package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

func TestRfq_DeadlinePassed_IncluyeTodoElDia(t *testing.T) {
	r := &entity.Rfq{BidDeadline: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)}

	assert.False(t, r.DeadlinePassed(time.Date(2025, 11, 30, 23, 0, 0, 0, time.UTC)))
	assert.False(t, r.DeadlinePassed(time.Date(2025, 12, 1, 23, 59, 59, 0, time.UTC)))
	assert.True(t, r.DeadlinePassed(time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)))
}

func TestActor_Owns(t *testing.T) {
	r := &entity.Rfq{CompanyID: "C1"}

	assert.True(t, entity.Actor{UserID: "u1", CompanyID: "C1", Role: entity.RoleCompany}.Owns(r))
	assert.True(t, entity.Actor{UserID: "C1", Role: entity.RoleCompany}.Owns(r), "sin company_id se usa user_id")
	assert.False(t, entity.Actor{UserID: "u1", CompanyID: "C2", Role: entity.RoleCompany}.Owns(r))
	assert.False(t, entity.Actor{UserID: "u1", CompanyID: "C1", Role: entity.RoleSupplier}.Owns(r))
}
