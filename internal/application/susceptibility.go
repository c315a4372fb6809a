package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"agar-mic/internal/domain/entity"
	"agar-mic/internal/domain/port"
)

var (
	// ErrNoActiveSeries пользователь прислал планшет, не начав серию.
	ErrNoActiveSeries = errors.New("no active series")
	// ErrBusy предыдущий планшет серии ещё оценивается.
	ErrBusy = errors.New("plate is still being processed")
	// ErrSeriesChanged серию отменили или начали заново, пока планшет оценивался.
	ErrSeriesChanged = errors.New("series was cancelled or restarted")
)

type SusceptibilityService struct {
	mu          sync.Mutex
	sessions    *SessionService
	plates      *PlateService
	images      port.ImageSource
	highlighter port.RegionHighlighter
	resolver    *MICResolver
}

// PlateOutput содержит вердикт планшета и картинку с подсветкой областей.
type PlateOutput struct {
	Plate        *entity.Plate
	Highlighted  []byte
	HighlightErr error // подсветка не получилась; вердикт при этом действителен
}

// SeriesOutput итог серии, накопленной в сессии.
type SeriesOutput struct {
	Series    *entity.ConcentrationSeries
	Result    entity.MICResult
	Positions []entity.MICResult
}

// NewSusceptibilityService создаёт сервис, который ведёт серию разведений в диалоге.
func NewSusceptibilityService(sessions *SessionService, plates *PlateService, images port.ImageSource,
	highlighter port.RegionHighlighter, resolver *MICResolver) *SusceptibilityService {
	return &SusceptibilityService{
		sessions:    sessions,
		plates:      plates,
		images:      images,
		highlighter: highlighter,
		resolver:    resolver,
	}
}

// BeginSeries начинает серию для препарата и ждёт снимки планшетов.
// Планшет прежней серии, который ещё оценивается, в новую не попадёт.
func (s *SusceptibilityService) BeginSeries(ctx context.Context, userID, chatID int64, drug string) (*entity.Session, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return nil, fmt.Errorf("%w: drug name is empty", entity.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Begin(ctx, userID, chatID, drug)
}

// CancelSeries забывает серию и возвращает сессию в главное меню.
func (s *SusceptibilityService) CancelSeries(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Cancel(ctx, userID, chatID)
}

// ProcessPlatePhoto оценивает снимок планшета и добавляет его в серию.
// Повторный снимок той же концентрации заменяет прежний. Пока планшет
// оценивается, сессия в состоянии StateProcessing и другие снимки отклоняются с ErrBusy.
func (s *SusceptibilityService) ProcessPlatePhoto(ctx context.Context, userID, chatID int64, concentration float64, photo []byte) (*PlateOutput, error) {
	if s.plates == nil || s.images == nil {
		return nil, errors.New("plate pipeline is not configured")
	}

	c, err := s.claim(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	source := fmt.Sprintf("chat-%d@%v", chatID, concentration)
	img, plate, evalErr := s.evaluate(ctx, c.drug, concentration, source, photo)

	if err := s.release(ctx, userID, chatID, c, plate); err != nil {
		return nil, err
	}
	if evalErr != nil {
		return nil, evalErr
	}

	out := &PlateOutput{Plate: plate}
	if s.highlighter != nil {
		out.Highlighted, out.HighlightErr = s.highlighter.HighlightRegions(img, plate)
	}

	return out, nil
}

func (s *SusceptibilityService) evaluate(ctx context.Context, drug string, concentration float64, source string, photo []byte) (image.Image, *entity.Plate, error) {
	img, err := s.images.Decode(photo)
	if err != nil {
		return nil, nil, err
	}
	plate, err := s.plates.Evaluate(ctx, drug, concentration, source, img)
	if err != nil {
		return nil, nil, err
	}
	return img, plate, nil
}

// plateClaim серия, для которой оценивается планшет.
type plateClaim struct {
	drug   string
	series uint64
}

// claim переводит собирающую серию сессию в StateProcessing.
func (s *SusceptibilityService) claim(ctx context.Context, userID, chatID int64) (plateClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(ctx, userID, chatID)
	if err != nil {
		return plateClaim{}, err
	}
	switch {
	case session.State == entity.StateProcessing:
		return plateClaim{}, ErrBusy
	case session.State != entity.StateCollectingPlates || session.Drug == "":
		return plateClaim{}, ErrNoActiveSeries
	}

	if _, err := s.sessions.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return plateClaim{}, err
	}
	return plateClaim{drug: session.Drug, series: session.Series}, nil
}

// release возвращает сессию к сбору серии и добавляет планшет, если он оценён.
// Если за время оценки серию отменили или начали заново, планшет отбрасывается.
func (s *SusceptibilityService) release(ctx context.Context, userID, chatID int64, c plateClaim, plate *entity.Plate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if session.Series != c.series || session.Drug != c.drug || session.State != entity.StateProcessing {
		return ErrSeriesChanged
	}

	if plate == nil {
		_, err := s.sessions.SetState(ctx, userID, chatID, entity.StateCollectingPlates)
		return err
	}

	session.SetState(entity.StateCollectingPlates)
	session.AddEntry(entity.SeriesEntry{Concentration: plate.Concentration(), Source: plate.Source(), Plate: plate})
	return s.sessions.Save(ctx, session)
}

// Resolve сводит накопленную серию к МПК и возвращает сессию в главное меню.
// Если планшеты разбиты на одинаковую сетку, считаются и МПК по позициям.
func (s *SusceptibilityService) Resolve(ctx context.Context, userID, chatID int64) (*SeriesOutput, error) {
	if s.resolver == nil {
		return nil, errors.New("resolver is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	switch {
	case session.State == entity.StateProcessing:
		return nil, ErrBusy
	case session.State != entity.StateCollectingPlates || session.Drug == "":
		return nil, ErrNoActiveSeries
	}

	series, err := entity.NewConcentrationSeries(session.Drug, session.Entries)
	if err != nil {
		return nil, err
	}
	result, err := s.resolver.Resolve(series)
	if err != nil {
		return nil, err
	}

	positions, err := s.resolver.ResolvePositions(series)
	if err != nil && !errors.Is(err, entity.ErrRegionMismatch) {
		return nil, err
	}

	session.Reset()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &SeriesOutput{Series: series, Result: result, Positions: positions}, nil
}
