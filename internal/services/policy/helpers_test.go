package policy

import "github.com/celine-platform/policies/internal/entities"

// Test subject constructors shared by the policy tests.

func testUser(id string, groups []string, scopes []string) *entities.Subject {
	return &entities.Subject{
		Kind:   entities.SubjectUser,
		ID:     id,
		Groups: groups,
		Scopes: scopes,
	}
}

func testService(id string, scopes []string) *entities.Subject {
	return &entities.Subject{
		Kind:   entities.SubjectService,
		ID:     id,
		Scopes: scopes,
	}
}

func datasetResource(id, accessLevel string) *entities.Resource {
	return &entities.Resource{
		Type: entities.ResourceDataset,
		ID:   id,
		Attributes: map[string]interface{}{
			"access_level": accessLevel,
		},
	}
}

func action(name string) *entities.Action {
	return &entities.Action{Name: name}
}
