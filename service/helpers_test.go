package service

import (
	"context"
	"testing"
	"time"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/testutil"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

var (
	engineer = models.CurrentUser{ID: "eng-1", Role: models.UserRoleENGINEER, Username: "engineer"}
	intruder = models.CurrentUser{ID: "eng-2", Role: models.UserRoleENGINEER, Username: "other engineer"}
	approver = models.CurrentUser{ID: "apr-1", Role: models.UserRoleAPPROVER, Username: "approver"}
	sdo      = models.CurrentUser{ID: "sdo-1", Role: models.UserRoleSDO, Username: "sdo"}
)

type fixture struct {
	svc     *ProposalService
	store   *testutil.MemoryProposalStore
	objects *testutil.FakeObjectStore
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := testutil.NewMemoryProposalStore()
	objects := testutil.NewFakeObjectStore()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return &fixture{
		svc:     NewProposalService(store, objects, opts...),
		store:   store,
		objects: objects,
	}
}

// createProposal 以 SDO 身份立项，指派 engineer
func (f *fixture) createProposal(t *testing.T) *models.WorkProposal {
	t.Helper()
	p, err := f.svc.CreateProposal(context.Background(), sdo, models.CreateProposalRequest{
		SerialNumber:      "WP-2024-001",
		NameOfWork:        "Village road repair",
		TypeOfWork:        "Road",
		WorkAgency:        "PWD",
		WorkDepartment:    "Rural Works",
		FinancialYear:     "2024-25",
		SanctionAmount:    500,
		AppointedEngineer: engineer.Ref(),
		AppointedSDO:      sdo.Ref(),
	})
	require.NoError(t, err)
	return p
}

// approveThrough 依次完成技术审批和行政审批
func (f *fixture) approveThrough(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Decide(ctx, id, models.StageTechnical, models.ActionApprove, approver,
		models.DecisionFields{ApprovalNumber: "TA-1"}, nil)
	require.NoError(t, err)

	amount := 450.0
	_, err = f.svc.Decide(ctx, id, models.StageAdministrative, models.ActionApprove, approver,
		models.DecisionFields{ApprovalNumber: "AA-1", ApprovedAmount: &amount, GovtDistrictAS: "District Collector"}, nil)
	require.NoError(t, err)
}

func (f *fixture) reload(t *testing.T, p *models.WorkProposal) *models.WorkProposal {
	t.Helper()
	got := f.store.Get(p.ID)
	require.NotNil(t, got)
	return got
}

func requireCode(t *testing.T, err error, code string) *utils.ApiError {
	t.Helper()
	require.Error(t, err)
	var apiErr *utils.ApiError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.ErrorCode, apiErr.Message)
	return apiErr
}

func imageUpload(field, name string) models.Upload {
	return models.Upload{Field: field, Name: name, MimeType: "image/jpeg", Data: []byte("jpeg-bytes-" + name)}
}

func docUpload(field, name string) models.Upload {
	return models.Upload{Field: field, Name: name, MimeType: "application/pdf", Data: []byte("%PDF-" + name)}
}

// loseFirstAck 第一次写入落库后仍向调用方返回版本冲突
func (f *fixture) loseFirstAck() {
	lost := false
	f.store.AfterSave = func(primitive.ObjectID) error {
		if lost {
			return nil
		}
		lost = true
		return models.ErrVersionConflict
	}
}

// conflictEverySave 每次写入前都有其他请求抢先更新版本
func (f *fixture) conflictEverySave() {
	f.store.BeforeSave = func(id primitive.ObjectID) {
		other := f.store.Get(id)
		other.Version++
		f.store.Put(other)
	}
}
