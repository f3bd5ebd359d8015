package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapTokens(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		hard      int
		want      int
	}{
		{"requested above cap", 4000, 3200, 3200},
		{"requested below cap", 1000, 3200, 1000},
		{"requested equals cap", 2200, 2200, 2200},
		{"tiny budget", 50, 800, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, capTokens(tt.requested, tt.hard))
		})
	}
}

func TestNewDeepPlanDefaultBudget(t *testing.T) {
	plan := newDeepPlan(4000, 16)

	assert.Equal(t, 3200, plan.stage1)
	assert.Equal(t, 1200, plan.persona)
	assert.Equal(t, 800, plan.panel)
	assert.Equal(t, 2200, plan.debate)
	assert.Equal(t, 2200, plan.final)
	assert.Equal(t, 60_000, plan.stage1Input)
	assert.Equal(t, 4, plan.workers)
}

func TestNewDeepPlanSmallBudgetShrinksEveryCall(t *testing.T) {
	plan := newDeepPlan(500, 16)

	assert.Equal(t, 500, plan.stage1)
	assert.Equal(t, 500, plan.persona)
	assert.Equal(t, 500, plan.panel)
	assert.Equal(t, 500, plan.debate)
	assert.Equal(t, 500, plan.final)
}

func TestNewDeepPlanWorkersBoundedByRoster(t *testing.T) {
	assert.Equal(t, 2, newDeepPlan(4000, 2).workers)
	assert.Equal(t, 4, newDeepPlan(4000, 16).workers)
	assert.Equal(t, 4, newDeepPlan(4000, 4).workers)
}

func TestNewFastPlanDefaultBudget(t *testing.T) {
	plan := newFastPlan(4000)

	assert.Equal(t, 1800, plan.stage1)
	assert.Equal(t, 1400, plan.stage2)
	assert.Equal(t, 1400, plan.panel)
	assert.Equal(t, 2000, plan.stage34)
	assert.Equal(t, 1400, plan.stage4Fallback)
	assert.Equal(t, 28_000, plan.stage1Input)
}

func TestNewFastPlanPanelSharesStage2Cap(t *testing.T) {
	for _, requested := range []int{400, 1400, 4000, 8000} {
		plan := newFastPlan(requested)
		assert.Equal(t, plan.stage2, plan.panel, "requested=%d", requested)
	}
}
