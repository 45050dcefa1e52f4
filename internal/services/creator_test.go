package services_test

import (
	"context"
	"testing"

	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/pkg/testkit"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(name string) models.ComponentUpload {
	return models.ComponentUpload{
		Name:         name,
		Description:  "A responsive pricing table",
		Category:     "Tables",
		Tags:         []string{" Pricing ", "SaaS", ""},
		PreviewImage: "https://cdn.example.com/pricing.png",
		ZipFile:      "https://cdn.example.com/pricing.zip",
	}
}

func TestFindOrCreateCreator(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	creator, err := serviceCreator.FindOrCreateCreator(ctx, &models.CreatorFromAuth{ID: 5, Username: " Alice ", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 5, creator.ID)
	assert.Equal(t, "alice", creator.Username)
	assert.EqualValues(t, 1, creator.Level)

	creator, err = serviceCreator.FindOrCreateCreator(ctx, &models.CreatorFromAuth{ID: 5, Username: "alice", DisplayName: "Alice B."})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", creator.DisplayName)

	stored, err := env.Store.FindCreatorByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", stored.DisplayName)

	_, err = serviceCreator.FindOrCreateCreator(ctx, nil)
	assert.Error(t, err)
}

func TestRecordUpload(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	result, err := serviceCreator.RecordUpload(ctx, 1, upload("Pricing Table!"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.TotalUploads)
	assert.EqualValues(t, services.POINTS_PER_UPLOAD, result.Points)
	assert.EqualValues(t, 1, result.Level)
	assert.Equal(t, []models.BadgeKind{models.BADGE_ROOKIE}, result.NewBadges)
	assert.Empty(t, result.NewRewards)
	assert.Equal(t, "pricing-table-"+result.Component.ID.String()[:8], result.Component.Slug)
	assert.Equal(t, []string{"pricing", "saas"}, result.Component.Tags)
	assert.Equal(t, "1.0.0", result.Component.Version)
	require.NotNil(t, result.Component.CreatorID)
	assert.EqualValues(t, 1, *result.Component.CreatorID)

	result, err = serviceCreator.RecordUpload(ctx, 1, upload("Pricing Table v2"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.TotalUploads)
	assert.EqualValues(t, 2*services.POINTS_PER_UPLOAD, result.Points)
	assert.Empty(t, result.NewBadges)

	component, err := serviceCreator.GetComponent(ctx, result.Component.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pricing Table v2", component.Name)
}


func TestRecordUploadGrantsRookieAfterFailedInsert(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	env.UseStore(&failingBadgeStore{Store: env.Store, failures: 1})
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	_, err := serviceCreator.RecordUpload(ctx, 1, upload("Stat Card"))
	require.ErrorIs(t, err, services.ErrPersistenceUnavailable)

	result, err := serviceCreator.RecordUpload(ctx, 1, upload("Stat Card v2"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.TotalUploads)
	assert.Equal(t, []models.BadgeKind{models.BADGE_ROOKIE}, result.NewBadges)
}
func TestRecordUploadValidation(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	unknownCategory := upload("Widget")
	unknownCategory.Category = "Games"
	_, err := serviceCreator.RecordUpload(ctx, 1, unknownCategory)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = serviceCreator.RecordUpload(ctx, 1, upload("   "))
	assert.ErrorIs(t, err, services.ErrValidation)

	noZip := upload("Widget")
	noZip.ZipFile = ""
	_, err = serviceCreator.RecordUpload(ctx, 1, noZip)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = serviceCreator.RecordUpload(ctx, 404, upload("Widget"))
	assert.ErrorIs(t, err, services.ErrNotFound)

	creator, err := env.Store.FindCreatorByID(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, creator.TotalUploads)
}

func TestGetComponentNotFound(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)

	_, err := serviceCreator.GetComponent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestGetStats(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	// counter raised behind the evaluator's back
	_, err := env.Store.RaiseCreatorDownloads(ctx, 1, 5200)
	require.NoError(t, err)

	stats, err := serviceCreator.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 5200, stats.TotalDownloads)
	assert.Len(t, stats.NewRewards, 4)
	assert.Len(t, stats.Badges, 4)
	require.Len(t, stats.PendingRewards, 1)
	assert.Equal(t, models.REWARD_KIND_GIFT_PACKAGE, stats.PendingRewards[0].Kind)
	assert.Len(t, stats.ClaimedRewards, 3)

	stats, err = serviceCreator.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stats.NewRewards)
	assert.Len(t, stats.ClaimedRewards, 3)
}

func TestGetStatsExcludesCancelled(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	serviceReward := testkit.MustInvoke[*services.ServiceReward](t, env)
	ctx := context.Background()

	gift := createReward(t, env, 1, giftPackage())
	_, err := serviceReward.UpdateFulfillment(ctx, gift.ID, admin, models.FulfillmentUpdate{Status: models.REWARD_STATUS_CANCELLED})
	require.NoError(t, err)

	stats, err := serviceCreator.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stats.PendingRewards)
	assert.Empty(t, stats.ClaimedRewards)
}

func TestAdjustDownloads(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	_, err := serviceCreator.AdjustDownloads(ctx, &models.OperatorContext{OperatorID: 1, Role: models.ROLE_CREATOR}, 1, 500)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = serviceCreator.AdjustDownloads(ctx, admin, 1, -1)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = serviceCreator.AdjustDownloads(ctx, admin, 404, 10)
	assert.ErrorIs(t, err, services.ErrNotFound)

	check, err := serviceCreator.AdjustDownloads(ctx, admin, 1, 500)
	require.NoError(t, err)
	assert.EqualValues(t, 500, check.TotalDownloads)
	assert.Len(t, check.NewRewards, 2)

	check, err = serviceCreator.AdjustDownloads(ctx, admin, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 500, check.TotalDownloads)
	assert.Empty(t, check.NewRewards)
}

func TestReconcileCreatesMissedRewards(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	_, err := env.Store.RaiseCreatorDownloads(ctx, 1, 150)
	require.NoError(t, err)

	check, err := serviceCreator.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 150, check.TotalDownloads)
	require.Len(t, check.NewRewards, 1)
	assert.Equal(t, 100, check.NewRewards[0].Milestone)

	check, err = serviceCreator.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, check.NewRewards)
}

func TestSweepMilestones(t *testing.T) {
	env := testkit.NewEnv(t)
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	totals := map[int64]int64{1: 50, 2: 100, 3: 600, 4: 1000}
	for id, total := range totals {
		env.SeedCreator(t, id, "creator")
		_, err := env.Store.RaiseCreatorDownloads(ctx, id, total)
		require.NoError(t, err)
	}

	created, err := serviceCreator.SweepMilestones(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0+1+2+3, created)

	created, err = serviceCreator.SweepMilestones(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, created)
}

func TestGetPublicProfile(t *testing.T) {
	env := testkit.NewEnv(t)
	env.SeedCreator(t, 1, "alice")
	serviceCreator := testkit.MustInvoke[*services.ServiceCreator](t, env)
	ctx := context.Background()

	_, err := serviceCreator.RecordUpload(ctx, 1, upload("Hero Banner"))
	require.NoError(t, err)
	_, err = serviceCreator.AdjustDownloads(ctx, admin, 1, 150)
	require.NoError(t, err)

	profile, err := serviceCreator.GetPublicProfile(ctx, "  Alice ")
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.Creator.ID)
	assert.EqualValues(t, services.Level(profile.Creator.Points), profile.Creator.Level)
	require.Len(t, profile.Components, 1)
	assert.Equal(t, "Hero Banner", profile.Components[0].Name)

	kinds := []models.BadgeKind{}
	for _, badge := range profile.Badges {
		kinds = append(kinds, badge.Kind)
	}
	assert.ElementsMatch(t, []models.BadgeKind{models.BADGE_ROOKIE, "milestone_100"}, kinds)

	_, err = serviceCreator.GetPublicProfile(ctx, "nobody")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = serviceCreator.GetPublicProfile(ctx, " ")
	assert.ErrorIs(t, err, services.ErrValidation)
}
