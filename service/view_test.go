package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func img(url string) models.Attachment {
	return models.Attachment{URL: url, StorageID: url, MimeType: "image/jpeg"}
}

// proposalWithEntries 构造含 n 条进度的提案，第 0 条为占位条目
func proposalWithEntries(n int) *models.WorkProposal {
	p := &models.WorkProposal{ID: primitive.NewObjectID(), CurrentStatus: models.StatusWorkInProgress}
	for i := 0; i < n; i++ {
		e := models.ProgressEntry{ID: primitive.NewObjectID(), Desc: fmt.Sprintf("entry %d", i)}
		if i == 0 {
			e.Role = models.EntryRoleAnchor
		}
		p.WorkProgress = append(p.WorkProgress, e)
	}
	return p
}

// imageScenario 三条进度分别带 [img0] [img1a img1b] [img2]，技术审批带一张图
func imageScenario() *models.WorkProposal {
	p := proposalWithEntries(3)
	p.WorkProgress[0].ProgressImages = models.AttachmentList{img("img0")}
	p.WorkProgress[1].ProgressImages = models.AttachmentList{img("img1a"), img("img1b")}
	p.WorkProgress[2].ProgressImages = models.AttachmentList{img("img2")}
	p.TechnicalApproval = &models.ApprovalRecord{
		Status:         models.ApprovalApproved,
		AttachedImages: models.AttachmentList{img("tech")},
	}
	return p
}

func TestSelectViewAll(t *testing.T) {
	p := proposalWithEntries(4)

	view, err := SelectView(p, AllEntries())
	require.NoError(t, err)
	require.Len(t, view.WorkProgress, 3)
	for i, e := range view.WorkProgress {
		assert.Equal(t, p.WorkProgress[i+1].ID, e.ID)
	}
	assert.Len(t, p.WorkProgress, 4, "stored proposal untouched")
}

func TestSelectViewAllWithOnlyAnchor(t *testing.T) {
	view, err := SelectView(proposalWithEntries(1), AllEntries())
	require.NoError(t, err)
	assert.NotNil(t, view.WorkProgress)
	assert.Empty(t, view.WorkProgress)

	view, err = SelectView(proposalWithEntries(0), AllEntries())
	require.NoError(t, err)
	assert.Empty(t, view.WorkProgress)
}

func TestSelectViewIndex(t *testing.T) {
	p := proposalWithEntries(4)

	for k := 1; k <= 3; k++ {
		view, err := SelectView(p, Selector{Index: k})
		require.NoError(t, err)
		require.Len(t, view.WorkProgress, 1)
		assert.Equal(t, p.WorkProgress[k], view.WorkProgress[0])
	}

	for _, k := range []int{0, 4, -1} {
		_, err := SelectView(p, Selector{Index: k})
		requireCode(t, err, utils.CodeInvalidArgument)
	}
}

func TestSelectViewDoesNotShareBackingArray(t *testing.T) {
	p := proposalWithEntries(3)
	view, err := SelectView(p, AllEntries())
	require.NoError(t, err)

	view.WorkProgress[0].Desc = "changed"
	assert.Equal(t, "entry 1", p.WorkProgress[1].Desc)
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		raw     string
		want    Selector
		wantErr bool
	}{
		{raw: "", want: AllEntries()},
		{raw: "all", want: AllEntries()},
		{raw: " ALL ", want: AllEntries()},
		{raw: "2", want: Selector{Index: 2}},
		{raw: "0", want: Selector{Index: 0}},
		{raw: "1.5", wantErr: true},
		{raw: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSelector(tt.raw)
			if tt.wantErr {
				requireCode(t, err, utils.CodeInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "all", AllEntries().String())
	assert.Equal(t, "3", Selector{Index: 3}.String())
}

func TestCollectImagesScenario(t *testing.T) {
	p := imageScenario()

	images := CollectImages(p)
	urls := make([]string, 0, len(images))
	for _, im := range images {
		urls = append(urls, im.URL)
	}
	// 占位条目的图片同样参与汇总
	assert.Equal(t, []string{"tech", "img0", "img1a", "img1b", "img2"}, urls)
	assert.Equal(t, SectionTechnicalApproval, images[0].Section)
	assert.Equal(t, SectionWorkProgress, images[1].Section)
	assert.Equal(t, "Initial Record", images[1].Caption)
	assert.Equal(t, "Progress Update 1: entry 1", images[2].Caption)
	assert.Equal(t, "Progress Update 2: entry 2", images[4].Caption)
}

func TestCollectImagesSectionOrder(t *testing.T) {
	p := proposalWithEntries(2)
	p.WorkProgress[1].ProgressImages = models.AttachmentList{img("progress")}
	p.WorkOrder = &models.WorkOrderRecord{AttachedImages: models.AttachmentList{img("order")}}
	p.TenderProcess = &models.TenderRecord{AttachedImages: models.AttachmentList{img("tender")}}
	p.AdministrativeApproval = &models.ApprovalRecord{AttachedImages: models.AttachmentList{img("admin")}}
	p.TechnicalApproval = &models.ApprovalRecord{AttachedImages: models.AttachmentList{img("tech"), {URL: ""}}}

	images := CollectImages(p)
	sections := make([]string, 0, len(images))
	for _, im := range images {
		sections = append(sections, im.Section)
	}
	assert.Equal(t, []string{
		SectionTechnicalApproval,
		SectionAdministrativeApproval,
		SectionTenderProcess,
		SectionWorkOrder,
		SectionWorkProgress,
	}, sections)
}

func TestCollectImagesIsSelectorInvariant(t *testing.T) {
	p := imageScenario()
	want := CollectImages(p)

	for _, sel := range []Selector{AllEntries(), {Index: 1}, {Index: 2}} {
		view, err := SelectView(p, sel)
		require.NoError(t, err)
		_ = view
		assert.Equal(t, want, CollectImages(p), sel.String())
	}
}

func TestGetProposal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := imageScenario()
	p.Version = 1
	f.store.Put(p)

	view, err := f.svc.GetProposal(ctx, p.ID.Hex(), "2")
	require.NoError(t, err)
	assert.Equal(t, "2", view.Selector)
	require.Len(t, view.Proposal.WorkProgress, 1)
	assert.Equal(t, p.WorkProgress[2].ID, view.Proposal.WorkProgress[0].ID)
	assert.Len(t, view.Images, 5)

	for _, raw := range []string{"", "all", "0", "9", "latest"} {
		view, err := f.svc.GetProposal(ctx, p.ID.Hex(), raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "all", view.Selector, raw)
		assert.Len(t, view.Proposal.WorkProgress, 2, raw)
		assert.Len(t, view.Images, 5, raw)
	}

	_, err = f.svc.GetProposal(ctx, primitive.NewObjectID().Hex(), "all")
	requireCode(t, err, utils.CodeNotFound)
}

func TestGetProposalNormalizesLegacyImageShapes(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.store.PutRaw(id, bson.M{
		"_id":           id,
		"currentStatus": "Work In Progress",
		"version":       1,
		"workProgress": bson.A{
			bson.M{"_id": primitive.NewObjectID(), "role": "anchor"},
			bson.M{"_id": primitive.NewObjectID(), "progressImages": bson.M{"url": "https://f/single.jpg"}},
			bson.M{"_id": primitive.NewObjectID(), "progressImages": bson.A{bson.M{"url": "https://f/a.jpg"}, bson.M{"url": "https://f/b.jpg"}}},
			bson.M{"_id": primitive.NewObjectID(), "progressImages": nil},
		},
	})

	view, err := f.svc.GetProposal(context.Background(), id.Hex(), "")
	require.NoError(t, err)
	require.Len(t, view.Images, 3)
	assert.Equal(t, "https://f/single.jpg", view.Images[0].URL)
	assert.Equal(t, "Progress Update 1", view.Images[0].Caption)
	assert.Equal(t, "https://f/b.jpg", view.Images[2].URL)
}
