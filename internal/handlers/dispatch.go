package handlers

import (
	"context"
	"sync"
)

// Dispatcher раздает апдейты из long polling по воркерам.
// Пользователь всегда попадает к одному воркеру, поэтому его апдейты идут в порядке получения
type Dispatcher struct {
	bot    *Bot
	queues []chan Update
}

func NewDispatcher(bot *Bot, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	queues := make([]chan Update, workers)
	for i := range queues {
		queues[i] = make(chan Update, 16)
	}
	return &Dispatcher{bot: bot, queues: queues}
}

// Run читает updates до закрытия канала или отмены ctx и ждет завершения воркеров
func (d *Dispatcher) Run(ctx context.Context, updates <-chan Update) {
	var wg sync.WaitGroup
	for _, q := range d.queues {
		wg.Add(1)
		go func(q chan Update) {
			defer wg.Done()
			for update := range q {
				d.bot.HandleUpdate(ctx, update)
			}
		}(q)
	}

	defer func() {
		for _, q := range d.queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			d.queues[d.shard(update)] <- update
		}
	}
}

func (d *Dispatcher) shard(update Update) int {
	user := sender(update)
	if user == nil {
		return 0
	}
	id := user.ID
	if id < 0 {
		id = -id
	}
	return int(id % int64(len(d.queues)))
}
