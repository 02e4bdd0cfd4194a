package app

import (
	"time"

	"github.com/tobeck/manasink/models"
)

// AddNotification appends a user-visible notification and returns its
// id. The notification auto-expires after the configured lifetime
// unless dismissed earlier.
func (s *Store) AddNotification(kind models.NotificationType, message string) int64 {
	s.mu.Lock()
	id := s.addNotificationLocked(kind, message)
	s.mu.Unlock()
	s.notifySubscribers()
	return id
}

// DismissNotification removes a notification by id. Dismissing an
// already-expired id is a no-op.
func (s *Store) DismissNotification(id int64) {
	s.mu.Lock()
	removed := s.removeNotificationLocked(id)
	s.mu.Unlock()
	if removed {
		s.notifySubscribers()
	}
}

func (s *Store) addNotificationLocked(kind models.NotificationType, message string) int64 {
	s.nextNotifyID++
	id := s.nextNotifyID
	s.notifications = append(s.notifications, models.Notification{ID: id, Type: kind, Message: message})

	time.AfterFunc(s.ttl, func() { s.DismissNotification(id) })
	return id
}

func (s *Store) removeNotificationLocked(id int64) bool {
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return true
		}
	}
	return false
}
