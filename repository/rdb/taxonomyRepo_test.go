package rdb

import (
	"context"
	"testing"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
)

func TestDomainRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewDomainRepository(db)
	ctx := context.Background()

	cs := &entities.Domain{Slug: "computer-science", NameZh: "计算机科学", NameEn: "Computer Science", SortOrder: 2,
		Extra: datatypes.JSON(`{"color":"blue"}`)}
	math := &entities.Domain{Slug: "math", NameZh: "数学", NameEn: "Mathematics", SortOrder: 1}
	require.NoError(t, repo.Create(ctx, cs))
	require.NoError(t, repo.Create(ctx, math))

	err := repo.Create(ctx, &entities.Domain{Slug: "math", NameZh: "x", NameEn: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	items, total, err := repo.List(ctx, &dto.TaxonomyQueryDTO{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "math", items[0].Slug, "按 sort_order 升序")

	items, total, err = repo.List(ctx, &dto.TaxonomyQueryDTO{Search: "SCIENCE"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, cs.ID, items[0].ID)

	require.NoError(t, repo.Update(ctx, cs.ID, map[string]any{"name_en": "CS", "sort_order": 0}))
	got, err := repo.GetByID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS", got.NameEn)
	assert.Equal(t, "计算机科学", got.NameZh)
	assert.JSONEq(t, `{"color":"blue"}`, string(got.Extra))

	err = repo.Update(ctx, cs.ID, map[string]any{"slug": "math"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.Delete(ctx, cs.ID))
	_, err = repo.GetByID(ctx, cs.ID)
	assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, cs.ID), commonerrors.ErrRepoNotFound)
}

func TestTopicRepository_ExactFiltersWin(t *testing.T) {
	db := newTestDB(t)
	domains := NewDomainRepository(db)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	d := &entities.Domain{Slug: "algo", NameZh: "算法", NameEn: "Algorithms"}
	require.NoError(t, domains.Create(ctx, d))
	require.NoError(t, repo.Create(ctx, &entities.Topic{DomainID: &d.ID, Slug: "binary-search", NameZh: "二分查找", NameEn: "Binary Search"}))
	require.NoError(t, repo.Create(ctx, &entities.Topic{Slug: "dfs", NameZh: "深度优先搜索", NameEn: "Depth First Search"}))

	items, total, err := repo.List(ctx, &dto.TaxonomyQueryDTO{Search: "search", Slug: "dfs"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].DomainID)

	items, total, err = repo.List(ctx, &dto.TaxonomyQueryDTO{Search: "search"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.NotNil(t, items[0].DomainID)
	assert.Equal(t, d.ID, *items[0].DomainID)
}
