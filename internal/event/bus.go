package event

import "sync"

// Bus — потокобезопасная очередь фиксированной ёмкости, в которую все адаптеры
// публикуют нормализованные события. При переполнении удаляется самое старое:
// устаревший статус питания/устройств безопасно выбрасывать, узкое место — речь.
// Потребитель ровно один; порядок публикаций каждого адаптера сохраняется.
type Bus struct {
	cap     int
	events  []Event
	mu      sync.Mutex
	notify  chan struct{}
	dropped uint64
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 64
	}
	return &Bus{cap: capacity, events: make([]Event, 0, capacity), notify: make(chan struct{}, 1)}
}

// Publish добавляет событие, при переполнении удаляет самое старое.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	if len(b.events) == b.cap {
		// удалить самое старое
		copy(b.events, b.events[1:])
		b.events = b.events[:b.cap-1]
		b.dropped++
	}
	b.events = append(b.events, ev)
	b.mu.Unlock()
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Drain возвращает все накопленные события в порядке прихода и очищает очередь.
func (b *Bus) Drain() []Event {
	b.mu.Lock()
	evs := make([]Event, len(b.events))
	copy(evs, b.events)
	b.events = b.events[:0]
	b.mu.Unlock()
	return evs
}

func (b *Bus) Len() int {
	b.mu.Lock()
	l := len(b.events)
	b.mu.Unlock()
	return l
}

// Dropped количество событий, вытесненных по переполнению.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	d := b.dropped
	b.mu.Unlock()
	return d
}

func (b *Bus) NotifyCh() <-chan struct{} { return b.notify }
