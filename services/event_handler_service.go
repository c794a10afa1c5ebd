package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
)

const eventBatchSize = 100

type EventHandlerServiceInterface interface {
	Start()
	Stop()
	ProcessPendingEvents() int
}

// EventHandlerService drains the outbox: pending events are published in
// insertion order and then marked dispatched.
type EventHandlerService struct {
	db        *database.Database
	publisher broker.Publisher
	interval  time.Duration

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

func NewEventHandlerService(db *database.Database, publisher broker.Publisher, interval time.Duration) *EventHandlerService {
	if interval <= 0 {
		interval = time.Second
	}
	return &EventHandlerService{
		db:        db,
		publisher: publisher,
		interval:  interval,
	}
}

func (s *EventHandlerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.stopChan)
	log.Printf("Event handler started, polling every %s", s.interval)
}

func (s *EventHandlerService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("Event handler stopped")
}

func (s *EventHandlerService) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *EventHandlerService) run(stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.ProcessPendingEvents()
		}
	}
}

// ProcessPendingEvents dispatches one batch and returns how many events were published.
func (s *EventHandlerService) ProcessPendingEvents() int {
	var events []models.Event
	if err := s.db.DB.Where("dispatched = ?", false).
		Order("timestamp ASC, id ASC").
		Limit(eventBatchSize).
		Find(&events).Error; err != nil {
		log.Printf("Error fetching events: %v", err)
		return 0
	}

	if len(events) > 0 {
		log.Printf("Found %d pending events to process", len(events))
	}

	dispatched := 0
	for _, event := range events {
		if err := s.dispatchEvent(event); err != nil {
			log.Printf("Error dispatching event %s: %v", event.ID, err)
			// Keep later events queued behind the failed one.
			break
		}
		dispatched++
	}
	return dispatched
}

func (s *EventHandlerService) dispatchEvent(event models.Event) error {
	teamID := ""
	if event.TeamID != nil {
		teamID = event.TeamID.String()
	}

	var data interface{}
	if err := json.Unmarshal(event.Data, &data); err != nil {
		log.Printf("Warning: Could not unmarshal event data: %v", err)
		data = map[string]interface{}{}
	}

	payload := map[string]interface{}{
		"type": event.Event,
		"payload": map[string]interface{}{
			"event_id":  event.ID.String(),
			"timestamp": event.Timestamp,
			"type":      event.Event,
			"entity":    event.Entity,
			"operation": event.Operation,
			"team_id":   teamID,
			"actor_id":  event.ActorID,
			"data":      data,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(broker.SubjectFor(event.Entity, teamID), event.Event, body); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.DB.Model(&event).Updates(map[string]interface{}{
		"dispatched":    true,
		"dispatched_at": now,
		"status":        "completed",
	}).Error
}

var EventHandlerServiceInstance EventHandlerServiceInterface
