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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SimulationService runs timed full-exam simulations. Answers during a
// simulation move ratings through the same committed path as practice, but
// all feedback is withheld until the sitting is scored.
type SimulationService interface {
	Start(userID, certCode string) (*dto.SimulationDTO, error)
	SubmitAnswer(userID string, sessionID uint, req *dto.SubmitSimAnswerRequest) error
	Complete(userID string, sessionID uint) (*dto.SimulationResultDTO, error)
	Results(userID string, sessionID uint) (*dto.SimulationResultDTO, error)
	History(userID string, limit int) ([]dto.SimulationSummaryDTO, error)
	// ExpireStale force-completes simulations whose time budget ran out
	// without the client calling Complete. Returns how many were closed.
	ExpireStale() (int, error)
}

type simulationService struct {
	sessionRepo   repository.SessionRepository
	certRepo      repository.CertificationRepository
	questionRepo  repository.QuestionRepository
	responseRepo  repository.ResponseRepository
	userSkillRepo repository.UserSkillRepository
	selector      QuestionSelectorService
	engine        *AnswerEngine
	cfg           *config.Config
}

func NewSimulationService(
	sessionRepo repository.SessionRepository,
	certRepo repository.CertificationRepository,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	userSkillRepo repository.UserSkillRepository,
	selector QuestionSelectorService,
	engine *AnswerEngine,
	cfg *config.Config,
) SimulationService {
	return &simulationService{
		sessionRepo:   sessionRepo,
		certRepo:      certRepo,
		questionRepo:  questionRepo,
		responseRepo:  responseRepo,
		userSkillRepo: userSkillRepo,
		selector:      selector,
		engine:        engine,
		cfg:           cfg,
	}
}

func (s *simulationService) Start(userID, certCode string) (*dto.SimulationDTO, error) {
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

	questions, err := s.selector.DrawExamSet(userID, cert, skill.GlobalRating, s.cfg.Simulation.QuestionCount)
	if err != nil {
		return nil, err
	}

	order := make([]uint, len(questions))
	for i, q := range questions {
		order[i] = q.ID
	}

	session := &model.Session{
		UserID:           userID,
		CertificationID:  cert.ID,
		Mode:             model.SessionModeSimulation,
		StartedAt:        time.Now(),
		SkillBefore:      skill.GlobalRating,
		QuestionOrder:    datatypes.NewJSONSlice(order),
		TimeLimitSeconds: s.cfg.Simulation.TimeLimitMinutes * 60,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	served := make([]dto.SimQuestionDTO, len(questions))
	for i, q := range questions {
		served[i] = dto.SimQuestionDTO{
			QuestionID:    q.ID,
			QuestionIndex: i,
			ScenarioText:  q.ScenarioText,
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			Domain:        q.Domain.Name,
		}
	}

	log.Info().Uint("sessionID", session.ID).Str("userID", userID).Int("questions", len(questions)).Msg("Simulation started")
	return &dto.SimulationDTO{
		SessionID:        session.ID,
		Questions:        served,
		TotalQuestions:   len(questions),
		TimeLimitMinutes: s.cfg.Simulation.TimeLimitMinutes,
		TimeLimitSeconds: session.TimeLimitSeconds,
	}, nil
}

func (s *simulationService) SubmitAnswer(userID string, sessionID uint, req *dto.SubmitSimAnswerRequest) error {
	session, err := s.sessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return err
	}
	if session.Mode != model.SessionModeSimulation {
		return fmt.Errorf("session %d is not a simulation", sessionID)
	}
	if !session.Active() {
		return ErrSessionNotActive
	}
	if s.expired(session, time.Now()) {
		if _, err := s.finalize(session); err != nil {
			return err
		}
		return ErrSessionNotActive
	}
	if !containsID(session.QuestionOrder, req.QuestionID) {
		return fmt.Errorf("question %d is not part of simulation %d", req.QuestionID, sessionID)
	}
	if containsID(session.ServedQuestionIDs, req.QuestionID) {
		return fmt.Errorf("question %d already answered in simulation %d", req.QuestionID, sessionID)
	}

	_, err = s.engine.Process(userID, session, req.QuestionID, req.SelectedIndex, req.TimeSpentSeconds)
	return err
}

func (s *simulationService) Complete(userID string, sessionID uint) (*dto.SimulationResultDTO, error) {
	session, err := s.sessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.SessionModeSimulation {
		return nil, fmt.Errorf("session %d is not a simulation", sessionID)
	}
	if !session.Active() {
		return s.buildResult(session)
	}
	return s.finalize(session)
}

func (s *simulationService) Results(userID string, sessionID uint) (*dto.SimulationResultDTO, error) {
	session, err := s.sessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.SessionModeSimulation {
		return nil, fmt.Errorf("session %d is not a simulation", sessionID)
	}
	if session.Active() {
		return nil, fmt.Errorf("simulation %d is still in progress", sessionID)
	}
	return s.buildResult(session)
}

func (s *simulationService) History(userID string, limit int) ([]dto.SimulationSummaryDTO, error) {
	sessions, err := s.sessionRepo.FindCompletedSimulations(userID, limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.SimulationSummaryDTO, len(sessions))
	for i, session := range sessions {
		summary := dto.SimulationSummaryDTO{
			SessionID:      session.ID,
			TotalQuestions: len(session.QuestionOrder),
			CorrectAnswers: session.CorrectAnswers,
			StartedAt:      session.StartedAt,
		}
		if session.Score != nil {
			summary.Score = *session.Score
		}
		if session.IsPassed != nil {
			summary.IsPassed = *session.IsPassed
		}
		summaries[i] = summary
	}
	return summaries, nil
}

func (s *simulationService) ExpireStale() (int, error) {
	// The cutoff is conservative; each session is still checked against its
	// own time budget before being closed.
	cutoff := time.Now().Add(-time.Duration(s.cfg.Simulation.TimeLimitMinutes) * time.Minute)
	stale, err := s.sessionRepo.FindIncompleteSimulationsStartedBefore(cutoff)
	if err != nil {
		return 0, err
	}
	closed := 0
	now := time.Now()
	for i := range stale {
		if !s.expired(&stale[i], now) {
			continue
		}
		if _, err := s.finalize(&stale[i]); err != nil {
			log.Error().Err(err).Uint("sessionID", stale[i].ID).Msg("Failed to expire stale simulation")
			continue
		}
		closed++
	}
	if closed > 0 {
		log.Info().Int("closed", closed).Msg("Expired stale simulations")
	}
	return closed, nil
}

func (s *simulationService) expired(session *model.Session, now time.Time) bool {
	if session.TimeLimitSeconds <= 0 {
		return false
	}
	deadline := session.StartedAt.Add(time.Duration(session.TimeLimitSeconds) * time.Second)
	return now.After(deadline)
}

// finalize scores the simulation and freezes the session. Unanswered
// questions count as wrong; the score is the weighted domain accuracy on a
// 0-1000 scale.
func (s *simulationService) finalize(session *model.Session) (*dto.SimulationResultDTO, error) {
	result, err := s.buildResult(session)
	if err != nil {
		return nil, err
	}

	skill, err := s.userSkillRepo.GetOrCreate(session.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	after := skill.GlobalRating
	score := result.Score
	passed := result.IsPassed
	session.EndedAt = &now
	session.IsComplete = true
	session.Score = &score
	session.IsPassed = &passed
	session.SkillAfter = &after
	if err := s.sessionRepo.UpdateWithVersion(session); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	result.TimeTakenMinutes = now.Sub(session.StartedAt).Minutes()
	log.Info().Uint("sessionID", session.ID).Int("score", score).Bool("passed", passed).Msg("Simulation completed")
	return result, nil
}

func (s *simulationService) buildResult(session *model.Session) (*dto.SimulationResultDTO, error) {
	cert, err := s.certRepo.FindByID(session.CertificationID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.FindByIDs(session.QuestionOrder)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	responses, err := s.responseRepo.FindBySession(session.ID)
	if err != nil {
		return nil, err
	}
	answered := make(map[uint]model.Response, len(responses))
	for _, r := range responses {
		answered[r.QuestionID] = r
	}

	type domainTally struct {
		domain  model.Domain
		total   int
		correct int
	}
	tallies := make(map[uint]*domainTally, len(cert.Domains))
	for _, d := range cert.Domains {
		tallies[d.ID] = &domainTally{domain: d}
	}

	questionResults := make([]dto.QuestionResultDTO, 0, len(session.QuestionOrder))
	correctTotal := 0
	for i, qid := range session.QuestionOrder {
		q, ok := byID[qid]
		if !ok {
			continue
		}
		qr := dto.QuestionResultDTO{
			Index:         i,
			QuestionID:    q.ID,
			ScenarioText:  q.ScenarioText,
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectIndex:  q.CorrectIndex,
			SelectedIndex: -1,
			Explanation:   q.Explanation,
			Domain:        q.Domain.Name,
			ConceptTag:    q.ConceptTag,
		}
		if r, ok := answered[qid]; ok {
			qr.SelectedIndex = r.SelectedIndex
			qr.IsCorrect = r.IsCorrect
		}
		if tally, ok := tallies[q.DomainID]; ok {
			tally.total++
			if qr.IsCorrect {
				tally.correct++
			}
		}
		if qr.IsCorrect {
			correctTotal++
		}
		questionResults = append(questionResults, qr)
	}

	// Weighted score: each domain contributes its syllabus share of 1000,
	// scaled by accuracy within that domain. Domains absent from the draw
	// redistribute their weight over the rest.
	weightedSum := 0.0
	weightTotal := 0.0
	domainResults := make([]dto.DomainResultDTO, 0, len(cert.Domains))
	for _, d := range cert.Domains {
		tally := tallies[d.ID]
		if tally.total == 0 {
			continue
		}
		accuracy := float64(tally.correct) / float64(tally.total)
		weightedSum += d.Weight * accuracy
		weightTotal += d.Weight
		domainResults = append(domainResults, dto.DomainResultDTO{
			DomainName:       d.Name,
			Weight:           d.Weight,
			QuestionsTotal:   tally.total,
			QuestionsCorrect: tally.correct,
			Accuracy:         accuracy,
		})
	}
	score := 0
	if weightTotal > 0 {
		score = int(weightedSum / weightTotal * 1000)
	}

	total := len(questionResults)
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correctTotal) / float64(total)
	}

	result := &dto.SimulationResultDTO{
		SessionID:       session.ID,
		Score:           score,
		IsPassed:        score >= cert.PassScore,
		PassThreshold:   cert.PassScore,
		TotalQuestions:  total,
		CorrectAnswers:  correctTotal,
		Accuracy:        accuracy,
		DomainResults:   domainResults,
		QuestionResults: questionResults,
	}
	if session.EndedAt != nil {
		result.TimeTakenMinutes = session.EndedAt.Sub(session.StartedAt).Minutes()
		if session.Score != nil {
			result.Score = *session.Score
			result.IsPassed = *session.IsPassed
		}
	}
	return result, nil
}
