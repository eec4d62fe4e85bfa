package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommentEvent is published after a comment has been committed.
type CommentEvent struct {
	PostID    uint      `json:"postId"`
	CommentID uint      `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Observer хранит каналы для подписчиков на комментарии.
type Observer struct {
	mu sync.RWMutex
	//          map[postID] map[subscriberID] channel
	subs map[uint]map[string]chan CommentEvent
}

// NewObserver - конструктор для нашего наблюдателя.
func NewObserver() *Observer {
	return &Observer{
		subs: make(map[uint]map[string]chan CommentEvent),
	}
}

// Subscribe registers a listener for new comments on postID. The returned
// cancel func unregisters it and closes the channel; it is safe to call twice.
func (o *Observer) Subscribe(postID uint, buffer int) (<-chan CommentEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan CommentEvent, buffer)
	subID := uuid.NewString()

	o.mu.Lock()
	if o.subs[postID] == nil {
		o.subs[postID] = make(map[string]chan CommentEvent)
	}
	o.subs[postID][subID] = ch
	o.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			if postSubs, ok := o.subs[postID]; ok {
				delete(postSubs, subID)
				if len(postSubs) == 0 {
					delete(o.subs, postID)
				}
			}
			o.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of its post without blocking.
// Subscribers that are not keeping up miss the event.
func (o *Observer) Publish(ev CommentEvent) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, ch := range o.subs[ev.PostID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of listeners on postID.
func (o *Observer) Subscribers(postID uint) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs[postID])
}
