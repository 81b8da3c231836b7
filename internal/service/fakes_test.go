package service

import (
	"context"
	"strings"
	"sync"

	"kisansetu-be/internal/entity"
	"kisansetu-be/internal/repository/contract"
	"kisansetu-be/internal/repository/specification"
	"kisansetu-be/internal/repository/unitofwork"
	"kisansetu-be/pkg/llm"

	"github.com/google/uuid"
)

// fakeProfileRepository keeps profiles in memory. Specifications are recorded but
// not evaluated, so tests seed exactly the rows a query should see.
type fakeProfileRepository struct {
	mu        sync.Mutex
	profiles  []*entity.UserProfile
	one       *entity.UserProfile
	counts    []int64
	createErr error
	lastSpecs []specification.Specification
}

func (r *fakeProfileRepository) Create(ctx context.Context, p *entity.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.profiles = append(r.profiles, p)
	return nil
}

func (r *fakeProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (r *fakeProfileRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSpecs = specs
	return r.one, nil
}

func (r *fakeProfileRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSpecs = specs
	return r.profiles, nil
}

// Count returns counts[len(specs)] so a call with no filter and a call with one
// filter can answer differently.
func (r *fakeProfileRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(specs) < len(r.counts) {
		return r.counts[len(specs)], nil
	}
	return 0, nil
}

type fakeUnitOfWork struct {
	repo *fakeProfileRepository
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserProfileRepository() contract.UserProfileRepository {
	return u.repo
}

type fakeRepositoryFactory struct {
	repo *fakeProfileRepository
}

func (f *fakeRepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo}
}

func ptr[T any](v T) *T {
	return &v
}

// fakeLLM answers soil prompts with soilReply and everything else with reply.
type fakeLLM struct {
	mu        sync.Mutex
	reply     string
	soilReply string
	err       error
	prompts   []string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.soilReply != "" && strings.Contains(prompt, "soil scientist") {
		return f.soilReply, nil
	}
	return f.reply, nil
}

func (f *fakeLLM) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

type sentMessage struct {
	SessionID string
	Type      string
	Data      interface{}
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *fakeNotifier) Send(sessionID, msgType string, data interface{}) error {
	n.mu.Lock()
	n.sent = append(n.sent, sentMessage{SessionID: sessionID, Type: msgType, Data: data})
	n.mu.Unlock()
	return nil
}

func (n *fakeNotifier) ofType(msgType string) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMessage
	for _, m := range n.sent {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}
