// Package crossing simulates a single four-way intersection whose signals
// adapt to queued traffic. An Engine moves vehicles on a motion tick, runs
// the signal Controller on a control tick and rolls for emergency vehicles
// on a dispatch tick. Each signal head is a small state machine driven by a
// SignalPlan, and every color change, emergency and vehicle is reported to
// registered observers.
//
// Observers for logging, metrics and safety checks live in pkg/observers;
// visualization renders a SignalPlan as Graphviz DOT.
package crossing
