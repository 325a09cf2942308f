// internal/service/template_service.go
package service

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/render"
	"github.com/netvista/ispconsole-backend/internal/repository"
)

type TemplateService struct {
	TemplateRepo repository.TemplateRepositoryInterface
}

// TemplateWithVariables is the API shape: the template plus the declared
// variable names derived from subject+body in order of first appearance.
type TemplateWithVariables struct {
	model.MessageTemplate
	Variables []string `json:"variables"`
}

func withVariables(t model.MessageTemplate) TemplateWithVariables {
	return TemplateWithVariables{
		MessageTemplate: t,
		Variables:       render.ExtractVariables(t.Subject, t.Body),
	}
}

func (s *TemplateService) List(channel model.Channel) ([]TemplateWithVariables, error) {
	templates, err := s.TemplateRepo.List(channel)
	if err != nil {
		return nil, err
	}

	out := make([]TemplateWithVariables, len(templates))
	for i, t := range templates {
		out[i] = withVariables(t)
	}
	return out, nil
}

func (s *TemplateService) Get(id int) (*TemplateWithVariables, error) {
	t, err := s.TemplateRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	tv := withVariables(*t)
	return &tv, nil
}

func (s *TemplateService) Create(t *model.MessageTemplate) (*TemplateWithVariables, error) {
	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	if err := s.TemplateRepo.Create(t); err != nil {
		return nil, err
	}
	tv := withVariables(*t)
	return &tv, nil
}

func (s *TemplateService) Update(t *model.MessageTemplate) (*TemplateWithVariables, error) {
	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	if err := s.TemplateRepo.Update(t); err != nil {
		return nil, err
	}
	tv := withVariables(*t)
	return &tv, nil
}

func (s *TemplateService) Delete(id int) error {
	return s.TemplateRepo.Delete(id)
}

func validateTemplate(t *model.MessageTemplate) error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("template name is required")
	}
	if !t.Channel.Valid() {
		return errors.Errorf("unknown channel %q", t.Channel)
	}
	if strings.TrimSpace(t.Body) == "" {
		return errors.New("template body is required")
	}
	if t.Channel == model.ChannelSMS {
		t.Subject = ""
	}
	return nil
}
