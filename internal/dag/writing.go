package dag

// RegisterWritingFlow adds the "writing" flow type: the illustrative DAG
// carried over from the evaluation pipeline this orchestrator was
// distilled from (originally backend/evaluation/event_flow/core/dag_config.py).
// Two scoring processors run in parallel from the root arguments, a final
// score aggregates both, a saver persists the aggregate, and an assessment
// step runs last. AbortHandler is the sole termination processor.
func RegisterWritingFlow(r *Registry) {
	r.Register("writing", []ProcessorDef{
		{Name: "InterviewPrepGrammar"},
		{Name: "Coherence"},
		{Name: "WritingFinalScore", DependsOn: []string{"InterviewPrepGrammar", "Coherence"}},
		{Name: "WritingSaver", DependsOn: []string{"InterviewPrepGrammar", "Coherence", "WritingFinalScore"}},
		{Name: "AssessmentEvaluatorProcessor", DependsOn: []string{"WritingSaver"}},
	}, []string{"AbortHandler"})
}
