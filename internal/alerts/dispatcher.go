package alerts

import "log"

type Dispatcher struct {
	logger *Logger
	queue  chan Event
}

func NewDispatcher(logger *Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		queue:  make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if err := d.logger.Log(ev); err != nil {
			// Si la base falla, al menos queda rastro en el log del proceso:
			// estas alertas jamás pueden perderse en silencio.
			log.Printf("ALERTA SIN PERSISTIR kind=%s evento=%s pago=%s detalle=%s err=%v",
				ev.Kind, ev.EventID, ev.PaymentID, ev.Detail, err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		log.Printf("ALERTA cola llena kind=%s evento=%s pago=%s detalle=%s",
			ev.Kind, ev.EventID, ev.PaymentID, ev.Detail)
	}
}
