package service

import (
	"testing"

	"qahub_backend/internal/model"
	"qahub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTagNormalization(t *testing.T) {
	env := newTestEnv(t)

	tag, err := env.tags.Create(&TagRequest{Name: "  Go-Modules "})
	require.NoError(t, err)
	assert.Equal(t, "go-modules", tag.Name)
	assert.Equal(t, "#007bff", tag.Color)

	// 重名（含大小写变体）被拒绝
	_, err = env.tags.Create(&TagRequest{Name: "GO-MODULES"})
	assert.ErrorIs(t, err, util.ErrTagNameTaken)
}

func TestCreateTagValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []string{"a", "go lang", "c++", ""}
	for _, name := range cases {
		_, err := env.tags.Create(&TagRequest{Name: name})
		assert.ErrorIs(t, err, util.ErrValidation, "name=%q", name)
	}

	_, err := env.tags.Create(&TagRequest{Name: "valid-tag", Color: "blue"})
	assert.ErrorIs(t, err, util.ErrValidation)

	tag, err := env.tags.Create(&TagRequest{Name: "valid-tag", Color: "#112233"})
	require.NoError(t, err)
	assert.Equal(t, "#112233", tag.Color)
}

func TestTagSynonymCycle(t *testing.T) {
	env := newTestEnv(t)

	a, err := env.tags.Create(&TagRequest{Name: "golang"})
	require.NoError(t, err)
	b, err := env.tags.Create(&TagRequest{Name: "go-lang"})
	require.NoError(t, err)
	c, err := env.tags.Create(&TagRequest{Name: "gopher"})
	require.NoError(t, err)

	// 链式同义：b→a，c→b 均合法
	require.NoError(t, env.tags.SetSynonym(b.ID, &a.ID))
	require.NoError(t, env.tags.SetSynonym(c.ID, &b.ID))

	// 成环被拒绝
	assert.ErrorIs(t, env.tags.SetSynonym(a.ID, &c.ID), util.ErrTagSynonymCycle)
	assert.ErrorIs(t, env.tags.SetSynonym(a.ID, &b.ID), util.ErrTagSynonymCycle)
	assert.ErrorIs(t, env.tags.SetSynonym(a.ID, &a.ID), util.ErrTagSynonymCycle)

	// 清除同义指向
	require.NoError(t, env.tags.SetSynonym(b.ID, nil))
	updated, err := env.tagRepo.FindByID(b.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.SynonymOfID)
}

func TestSynonymCollapsesOnQuestionCreate(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")

	canonical, err := env.tags.Create(&TagRequest{Name: "golang"})
	require.NoError(t, err)
	alias, err := env.tags.Create(&TagRequest{Name: "go-lang"})
	require.NoError(t, err)
	require.NoError(t, env.tags.SetSynonym(alias.ID, &canonical.ID))

	question := env.createQuestion(t, author.ID, "同义标签会折叠到主标签吗", "go-lang")

	require.Len(t, question.Tags, 1)
	assert.Equal(t, "golang", question.Tags[0].Name)

	main, err := env.tagRepo.FindByID(canonical.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), main.UsageCount)

	aliasTag, err := env.tagRepo.FindByID(alias.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), aliasTag.UsageCount)
}

func TestTagUsageFloor(t *testing.T) {
	env := newTestEnv(t)

	tag := &model.Tag{Name: "orphan"}
	require.NoError(t, env.tagRepo.Create(tag))

	// 计数为 0 时再扣保持 0
	require.NoError(t, env.tagRepo.DecrementUsage(env.db, tag.ID))
	updated, err := env.tagRepo.FindByID(tag.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), updated.UsageCount)
}

func TestTagRename(t *testing.T) {
	env := newTestEnv(t)

	tag, err := env.tags.Create(&TagRequest{Name: "old-name"})
	require.NoError(t, err)
	_, err = env.tags.Create(&TagRequest{Name: "taken"})
	require.NoError(t, err)

	_, err = env.tags.Update(tag.ID, &TagRequest{Name: "Taken"})
	assert.ErrorIs(t, err, util.ErrTagNameTaken)

	renamed, err := env.tags.Update(tag.ID, &TagRequest{Name: "new-name", Description: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "new-name", renamed.Name)
	assert.Equal(t, "renamed", renamed.Description)
}
