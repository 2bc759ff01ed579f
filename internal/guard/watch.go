package guard

import (
	"shopoholic/internal/metrics"
	"shopoholic/internal/notify"
	"shopoholic/internal/session"
)

// Watch держит решение для открытой страницы актуальным: оценивает сразу
// и заново на каждое событие сессии, включая выход в другой вкладке.
// stop отписывает и безопасен при повторном вызове.
func Watch(st *session.Store, p Policy, req Requirement, requested string, fn func(Decision)) (stop func()) {
	evaluate := func() {
		d := p.Evaluate(st.Ready(), st.Current(), req, requested)
		metrics.GuardDecisions.WithLabelValues(d.Outcome.String()).Inc()
		fn(d)
	}

	stop = st.Notifier().Subscribe(func(notify.Event) { evaluate() })
	evaluate()
	return stop
}
