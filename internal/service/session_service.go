package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/certprep/config"
	"github.com/lshigami/certprep/internal/dto"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SessionService drives adaptive practice sittings: start, serve the next
// question, grade an answer with immediate feedback, end.
type SessionService interface {
	StartPractice(userID, certCode string) (*dto.SessionDTO, error)
	NextQuestion(userID string, sessionID uint) (*dto.ServedQuestionDTO, error)
	SubmitAnswer(userID string, sessionID uint, req *dto.SubmitAnswerRequest) (*dto.AnswerFeedbackDTO, error)
	EndSession(userID string, sessionID uint) (*dto.SessionDTO, error)
}

type sessionService struct {
	sessionRepo   repository.SessionRepository
	certRepo      repository.CertificationRepository
	userSkillRepo repository.UserSkillRepository
	selector      QuestionSelectorService
	engine        *AnswerEngine
	cfg           *config.Config
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	certRepo repository.CertificationRepository,
	userSkillRepo repository.UserSkillRepository,
	selector QuestionSelectorService,
	engine *AnswerEngine,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		sessionRepo:   sessionRepo,
		certRepo:      certRepo,
		userSkillRepo: userSkillRepo,
		selector:      selector,
		engine:        engine,
		cfg:           cfg,
	}
}

func (s *sessionService) StartPractice(userID, certCode string) (*dto.SessionDTO, error) {
	cert, err := s.certRepo.FindActiveByCode(certCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certification %s not found", certCode)
		}
		return nil, err
	}

	skill, err := s.userSkillRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		UserID:          userID,
		CertificationID: cert.ID,
		Mode:            model.SessionModePractice,
		StartedAt:       time.Now(),
		SkillBefore:     skill.GlobalRating,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	log.Info().Uint("sessionID", session.ID).Str("userID", userID).Str("cert", certCode).Msg("Practice session started")
	return sessionToDTO(session, cert.Code), nil
}

func (s *sessionService) NextQuestion(userID string, sessionID uint) (*dto.ServedQuestionDTO, error) {
	session, err := s.sessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.SessionModePractice {
		return nil, fmt.Errorf("session %d is not a practice session", sessionID)
	}
	if !session.Active() {
		return nil, ErrSessionNotActive
	}

	cert, err := s.certRepo.FindByID(session.CertificationID)
	if err != nil {
		return nil, err
	}

	question, fromCache, err := s.selector.SelectNextQuestion(userID, cert, session.ServedQuestionIDs)
	if err != nil {
		return nil, err
	}

	// Reserve the question in the seen-set so a repeated call cannot serve
	// it twice within the sitting.
	session.ServedQuestionIDs = append(session.ServedQuestionIDs, question.ID)
	if err := s.sessionRepo.UpdateWithVersion(session); err != nil {
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		fresh, ferr := s.sessionRepo.FindByIDForUser(sessionID, userID)
		if ferr != nil {
			return nil, ferr
		}
		if !fresh.Active() {
			return nil, ErrSessionNotActive
		}
		if !containsID(fresh.ServedQuestionIDs, question.ID) {
			fresh.ServedQuestionIDs = append(fresh.ServedQuestionIDs, question.ID)
		}
		if err := s.sessionRepo.UpdateWithVersion(fresh); err != nil {
			return nil, ErrConcurrentModification
		}
	}

	return &dto.ServedQuestionDTO{
		QuestionID:   question.ID,
		ScenarioText: question.ScenarioText,
		QuestionText: question.QuestionText,
		Options:      question.Options,
		Domain:       question.Domain.Name,
		Difficulty:   question.DifficultyRating,
		FromCache:    fromCache,
	}, nil
}

func (s *sessionService) SubmitAnswer(userID string, sessionID uint, req *dto.SubmitAnswerRequest) (*dto.AnswerFeedbackDTO, error) {
	session, err := s.sessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.SessionModePractice {
		return nil, fmt.Errorf("session %d is not a practice session", sessionID)
	}

	outcome, err := s.engine.Process(userID, session, req.QuestionID, req.SelectedIndex, req.TimeSpentSeconds)
	if err != nil {
		return nil, err
	}

	return &dto.AnswerFeedbackDTO{
		IsCorrect:           outcome.IsCorrect,
		CorrectIndex:        outcome.Question.CorrectIndex,
		Explanation:         outcome.Question.Explanation,
		SkillBefore:         outcome.SkillBefore,
		SkillAfter:          outcome.SkillAfter,
		Domain:              outcome.Question.Domain.Name,
		DomainSkillAfter:    outcome.DomainSkillAfter,
		AutoQueuedForReview: outcome.AutoQueued,
	}, nil
}

func (s *sessionService) EndSession(userID string, sessionID uint) (*dto.SessionDTO, error) {
	session, err := s.sessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	cert, err := s.certRepo.FindByID(session.CertificationID)
	if err != nil {
		return nil, err
	}

	// Ending twice is harmless; the first end already froze the session.
	if !session.Active() {
		return sessionToDTO(session, cert.Code), nil
	}

	skill, err := s.userSkillRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	after := skill.GlobalRating
	session.EndedAt = &now
	session.IsComplete = true
	session.SkillAfter = &after
	if err := s.sessionRepo.UpdateWithVersion(session); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	log.Info().Uint("sessionID", session.ID).Int("answered", session.TotalQuestions).Msg("Practice session ended")
	return sessionToDTO(session, cert.Code), nil
}

func sessionToDTO(session *model.Session, certCode string) *dto.SessionDTO {
	return &dto.SessionDTO{
		SessionID:         session.ID,
		CertificationCode: certCode,
		Mode:              session.Mode,
		StartedAt:         session.StartedAt,
		EndedAt:           session.EndedAt,
		TotalQuestions:    session.TotalQuestions,
		CorrectAnswers:    session.CorrectAnswers,
		SkillBefore:       session.SkillBefore,
		SkillAfter:        session.SkillAfter,
		IsComplete:        session.IsComplete,
	}
}
