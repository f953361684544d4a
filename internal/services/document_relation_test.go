package services

import (
	"testing"

	"riveredge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTypesRegistry(t *testing.T) {
	expected := []string{
		models.DocSalesOrder, models.DocSalesForecast, models.DocPurchaseOrder,
		models.DocDemand, models.DocDemandComputation, models.DocProductionPlan,
		models.DocWorkOrder, models.DocProductionPicking, models.DocReportingRecord,
		models.DocFinishedGoodsReceipt, models.DocPurchaseReceipt,
		models.DocIncomingInspection, models.DocProcessInspection,
		models.DocFinishedGoodsInspection, models.DocSalesDelivery,
		models.DocPayable, models.DocReceivable, models.DocMaterial,
	}
	for _, docType := range expected {
		dt, ok := documentTypes[docType]
		require.True(t, ok, "缺少单据类型 %s", docType)
		assert.NotEmpty(t, dt.table, docType)
		assert.NotEmpty(t, dt.codeField, docType)
		assert.NotNil(t, dt.upstream, docType)
		assert.NotNil(t, dt.downstream, docType)
	}
	assert.Len(t, documentTypes, len(expected))
}

func TestVisitKey(t *testing.T) {
	key := visitKey(DocumentNode{Type: models.DocWorkOrder, ID: 42})
	assert.Equal(t, "work_order:42", key)
}

func TestAddRelationRejectsUnknownType(t *testing.T) {
	s := NewDocumentRelationServiceWith(nil)

	err := s.AddRelation(1, "unknown", 1, models.DocWorkOrder, 2)
	assert.Error(t, err)

	err = s.AddRelation(1, models.DocSalesOrder, 1, "unknown", 2)
	assert.Error(t, err)
}

func TestTraceDocumentChainRejectsBadInput(t *testing.T) {
	s := NewDocumentRelationServiceWith(nil)

	_, err := s.TraceDocumentChain(1, models.DocSalesOrder, 1, "sideways")
	assert.Error(t, err)

	_, err = s.TraceDocumentChain(1, "unknown", 1, "both")
	assert.Error(t, err)
}

func TestGetDocumentRelationsRejectsUnknownType(t *testing.T) {
	s := NewDocumentRelationServiceWith(nil)
	_, err := s.GetDocumentRelations(1, "unknown", 1)
	assert.Error(t, err)
}

func TestApplyUpstreamChangeImpactDisabled(t *testing.T) {
	s := NewDocumentRelationServiceWith(nil)

	// 关闭自动标记时不碰任何数据
	affected, err := s.ApplyUpstreamChangeImpact(1, models.DocSalesOrder, 1, false)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestApplyUpstreamChangeImpactRejectsType(t *testing.T) {
	s := NewDocumentRelationServiceWith(nil)
	_, err := s.ApplyUpstreamChangeImpact(1, models.DocWorkOrder, 1, true)
	assert.Error(t, err)
}

func TestRecommendActions(t *testing.T) {
	impact := &ChangeImpact{
		AffectedPlans:      []DocumentNode{{ID: 1}},
		AffectedWorkOrders: []DocumentNode{{ID: 2}},
	}
	actions := recommendActions(impact)
	assert.Len(t, actions, 2)

	impact = &ChangeImpact{AffectedComputations: []DocumentNode{{ID: 3}}}
	actions = recommendActions(impact)
	assert.Len(t, actions, 1)

	actions = recommendActions(&ChangeImpact{})
	require.Len(t, actions, 1)
	assert.Equal(t, "无下游单据受影响", actions[0])
}
