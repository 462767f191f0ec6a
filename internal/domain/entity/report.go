package entity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// InstanceOutcome registra o resultado do processamento de uma instância.
type InstanceOutcome struct {
	Instance  DBInstance       `json:"instance"`
	Result    *AggregateResult `json:"result,omitempty"`
	Published bool             `json:"published"`
	Err       error            `json:"-"`
	Error     string           `json:"error,omitempty"`
}

// Failed reports whether the instance did not complete successfully.
func (o InstanceOutcome) Failed() bool {
	return o.Err != nil
}

// RunReport is what a monitoring pass hands back to its trigger.
type RunReport struct {
	RunID      string            `json:"run_id"`
	ClusterID  string            `json:"cluster_id"`
	AccountID  string            `json:"account_id,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Outcomes   []InstanceOutcome `json:"outcomes"`
	Err        error             `json:"-"`
	Error      string            `json:"error,omitempty"`
}

// Failures returns the outcomes of the instances that failed.
func (r *RunReport) Failures() []InstanceOutcome {
	var failed []InstanceOutcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Succeeded is true when every instance was processed and published.
func (r *RunReport) Succeeded() bool {
	return r.Err == nil && len(r.Failures()) == 0
}

// Combined joins the run-level error with every instance error.
func (r *RunReport) Combined() error {
	errs := []error{r.Err}
	for _, o := range r.Failures() {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}

// StatusCode follows the HTTP-like convention of the Lambda response.
func (r *RunReport) StatusCode() int {
	if r.Succeeded() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// Summary is the short textual result of the run.
func (r *RunReport) Summary() string {
	if r.Succeeded() {
		return "Success"
	}
	var parts []string
	if r.Err != nil {
		parts = append(parts, r.Err.Error())
	}
	failed := r.Failures()
	if len(failed) > 0 {
		parts = append(parts, fmt.Sprintf("%d of %d instances failed", len(failed), len(r.Outcomes)))
		for _, o := range failed {
			parts = append(parts, o.Err.Error())
		}
	}
	return "Failure: " + strings.Join(parts, "; ")
}

// Finalize copies error values into their serializable fields.
func (r *RunReport) Finalize() {
	if r.Err != nil {
		r.Error = r.Err.Error()
	}
	for i := range r.Outcomes {
		if r.Outcomes[i].Err != nil {
			r.Outcomes[i].Error = r.Outcomes[i].Err.Error()
		}
	}
}
