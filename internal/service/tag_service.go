package service

import (
	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/util"

	"gorm.io/gorm"
)

// 同义词链最大深度，超过视为环
const maxSynonymDepth = 32

type TagService struct {
	TagRepo *repository.TagRepository
}

func NewTagService(tagRepo *repository.TagRepository) *TagService {
	return &TagService{TagRepo: tagRepo}
}

type TagRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Color       string `json:"color" binding:"omitempty"`
}

type SynonymRequest struct {
	SynonymOfID *uint `json:"synonymOfId"`
}

type TagResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	UsageCount  uint   `json:"usageCount"`
	IsFeatured  bool   `json:"isFeatured"`
	IsModerated bool   `json:"isModerated"`
	SynonymOf   string `json:"synonymOf,omitempty"`
}

func toTagResponse(t *model.Tag) *TagResponse {
	resp := &TagResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Color:       t.Color,
		UsageCount:  t.UsageCount,
		IsFeatured:  t.IsFeatured,
		IsModerated: t.IsModerated,
	}
	if t.SynonymOf != nil {
		resp.SynonymOf = t.SynonymOf.Name
	}
	return resp
}

func (s *TagService) List(offset, limit int, search string) ([]TagResponse, int64, error) {
	tags, total, err := s.TagRepo.FindWithPagination(offset, limit, search, nil)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TagResponse, 0, len(tags))
	for i := range tags {
		responses = append(responses, *toTagResponse(&tags[i]))
	}
	return responses, total, nil
}

func (s *TagService) Get(id uint) (*TagResponse, error) {
	tag, err := s.TagRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	return toTagResponse(tag), nil
}

func (s *TagService) Create(req *TagRequest) (*TagResponse, error) {
	name := util.NormalizeTagName(req.Name)
	if err := util.ValidateTagName(name); err != nil {
		return nil, err
	}
	if req.Color != "" {
		if err := util.ValidateHexColor(req.Color); err != nil {
			return nil, err
		}
	}

	if _, err := s.TagRepo.FindByName(name); err == nil {
		return nil, util.ErrTagNameTaken
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	tag := &model.Tag{
		Name:        name,
		Description: req.Description,
	}
	if req.Color != "" {
		tag.Color = req.Color
	}
	if err := s.TagRepo.Create(tag); err != nil {
		return nil, err
	}
	return toTagResponse(tag), nil
}

func (s *TagService) Update(id uint, req *TagRequest) (*TagResponse, error) {
	tag, err := s.TagRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}

	name := util.NormalizeTagName(req.Name)
	if err := util.ValidateTagName(name); err != nil {
		return nil, err
	}
	if name != tag.Name {
		if _, err := s.TagRepo.FindByName(name); err == nil {
			return nil, util.ErrTagNameTaken
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		tag.Name = name
	}
	if req.Color != "" {
		if err := util.ValidateHexColor(req.Color); err != nil {
			return nil, err
		}
		tag.Color = req.Color
	}
	tag.Description = req.Description

	if err := s.TagRepo.Update(tag); err != nil {
		return nil, err
	}
	return toTagResponse(tag), nil
}

// SetSynonym 设置或清除同义指向，沿同义链走查防环
func (s *TagService) SetSynonym(id uint, synonymOfID *uint) error {
	tag, err := s.TagRepo.FindByID(id)
	if err != nil {
		return util.ErrNotFound
	}

	if synonymOfID != nil {
		if *synonymOfID == id {
			return util.ErrTagSynonymCycle
		}
		target, err := s.TagRepo.FindByID(*synonymOfID)
		if err != nil {
			return util.ErrNotFound
		}

		// 从目标沿链上溯，遇到自己即成环
		current := target
		for depth := 0; depth < maxSynonymDepth; depth++ {
			if current.SynonymOfID == nil {
				break
			}
			if *current.SynonymOfID == id {
				return util.ErrTagSynonymCycle
			}
			next, err := s.TagRepo.FindByID(*current.SynonymOfID)
			if err != nil {
				break
			}
			current = next
		}
	}

	return s.TagRepo.UpdateSynonym(tag.ID, synonymOfID)
}

func (s *TagService) SetFeatured(id uint, featured bool) error {
	tag, err := s.TagRepo.FindByID(id)
	if err != nil {
		return util.ErrNotFound
	}
	tag.IsFeatured = featured
	return s.TagRepo.Update(tag)
}

func (s *TagService) SetModerated(id uint, moderated bool) error {
	tag, err := s.TagRepo.FindByID(id)
	if err != nil {
		return util.ErrNotFound
	}
	tag.IsModerated = moderated
	return s.TagRepo.Update(tag)
}

// SetHidden 下架/恢复上架
func (s *TagService) SetHidden(id uint, hidden bool) error {
	var err error
	if hidden {
		err = s.TagRepo.Deactivate(id)
	} else {
		err = s.TagRepo.Activate(id)
	}
	if err == gorm.ErrRecordNotFound {
		return util.ErrNotFound
	}
	return err
}

func (s *TagService) SoftDelete(id uint) error {
	return s.TagRepo.SoftDelete(id)
}

func (s *TagService) Restore(id uint) error {
	if _, err := s.TagRepo.FindByIDAny(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrNotFound
		}
		return err
	}
	return s.TagRepo.Restore(id)
}
