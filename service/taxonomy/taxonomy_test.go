package taxonomy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

func newService(t *testing.T) TaxonomyService {
	t.Helper()
	db := testkit.NewDB(t)
	return NewTaxonomyService(rdb.NewDomainRepository(db), rdb.NewTopicRepository(db), testkit.NewLogger(t))
}

func TestDomainLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.CreateDomain(ctx, &dto.CreateDomainDTO{
		Slug:   "computer-science",
		NameZh: "计算机科学",
		NameEn: "Computer Science",
		Extra:  datatypes.JSON(`{"color":"blue"}`),
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.JSONEq(t, `{"color":"blue"}`, string(created.Extra))

	_, err = svc.CreateDomain(ctx, &dto.CreateDomainDTO{Slug: "computer-science", NameZh: "x", NameEn: "x"})
	assert.ErrorIs(t, err, ErrSlugExists)

	name := "CS"
	order := 3
	updated, err := svc.UpdateDomain(ctx, created.ID, &dto.UpdateDomainDTO{NameEn: &name, SortOrder: &order})
	require.NoError(t, err)
	assert.Equal(t, "CS", updated.NameEn)
	assert.Equal(t, "计算机科学", updated.NameZh, "未提供的字段保持不变")
	assert.Equal(t, 3, updated.SortOrder)

	require.NoError(t, svc.DeleteDomain(ctx, created.ID))
	_, err = svc.GetDomain(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteDomain(ctx, created.ID), ErrNotFound)
	_, err = svc.UpdateDomain(ctx, created.ID, &dto.UpdateDomainDTO{NameEn: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	// 软删除后的 slug 仍然占用
	_, err = svc.CreateDomain(ctx, &dto.CreateDomainDTO{Slug: "computer-science", NameZh: "x", NameEn: "x"})
	assert.ErrorIs(t, err, ErrSlugExists)
}

func TestListDomainsSearchAndOrder(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for i, in := range []dto.CreateDomainDTO{
		{Slug: "math", NameZh: "数学", NameEn: "Mathematics", SortOrder: 2},
		{Slug: "algorithms", NameZh: "算法", NameEn: "Algorithms", SortOrder: 1},
		{Slug: "physics", NameZh: "物理", NameEn: "Physics", SortOrder: 0},
	} {
		in := in
		_, err := svc.CreateDomain(ctx, &in)
		require.NoError(t, err, i)
	}

	all, err := svc.ListDomains(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	require.Len(t, all.Data, 3)
	assert.Equal(t, []string{"physics", "algorithms", "math"},
		[]string{all.Data[0].Slug, all.Data[1].Slug, all.Data[2].Slug})

	found, err := svc.ListDomains(ctx, &dto.TaxonomyQueryDTO{Search: "MATH"})
	require.NoError(t, err)
	require.Len(t, found.Data, 1)
	assert.Equal(t, "math", found.Data[0].Slug)

	page, err := svc.ListDomains(ctx, &dto.TaxonomyQueryDTO{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "math", page.Data[0].Slug)
}

func TestTopicLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	domain, err := svc.CreateDomain(ctx, &dto.CreateDomainDTO{Slug: "algorithms", NameZh: "算法", NameEn: "Algorithms"})
	require.NoError(t, err)

	missing := ids.ID(999)
	_, err = svc.CreateTopic(ctx, &dto.CreateTopicDTO{DomainID: &missing, Slug: "x", NameZh: "x", NameEn: "x"})
	assert.ErrorIs(t, err, ErrDomainNotFound)

	topic, err := svc.CreateTopic(ctx, &dto.CreateTopicDTO{
		DomainID: &domain.ID, Slug: "binary-search", NameZh: "二分查找", NameEn: "Binary Search",
	})
	require.NoError(t, err)
	require.NotNil(t, topic.DomainID)
	assert.Equal(t, domain.ID, *topic.DomainID)

	_, err = svc.CreateTopic(ctx, &dto.CreateTopicDTO{Slug: "binary-search", NameZh: "x", NameEn: "x"})
	assert.ErrorIs(t, err, ErrSlugExists)
	_, err = svc.CreateTopic(ctx, &dto.CreateTopicDTO{Slug: "sorting", NameZh: "排序", NameEn: "Sorting"})
	require.NoError(t, err)

	// 精确条件优先于 search
	list, err := svc.ListTopics(ctx, &dto.TaxonomyQueryDTO{Slug: "sorting", Search: "binary"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "sorting", list.Data[0].Slug)

	slug := "sorting"
	_, err = svc.UpdateTopic(ctx, topic.ID, &dto.UpdateTopicDTO{Slug: &slug})
	assert.ErrorIs(t, err, ErrSlugExists)

	require.NoError(t, svc.DeleteTopic(ctx, topic.ID))
	_, err = svc.GetTopic(ctx, topic.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
