/*
Package builder runs one build session: it turns a loaded *model.Model into a
registry of type descriptors, an index of instance slice chains with their
resolved properties, and the exported *graph.Graph.

The session is a multi-phase process:

 1. Type Declaration: Every type of the model is declared into a fresh
    registry, then its descriptor is computed. Merge findings are reported to
    the session's diagnostics collector as they happen.

 2. Instance Creation: Every instance block is expanded by its `count` and a
    slice chain is created for each copy, then registered in the index under
    its context.

 3. Reference Resolution: Container, requires, required-by, children, groups,
    construct and contract target references are resolved against the index.
    Ambiguous matches are fatal.

 4. Container Cycle Check: The instance-to-container links are laid into a
    `dag` graph and every cycle is reported as fatal. Only the instances on
    the cycle are affected: they are left unresolved. Instances contained by
    them still resolve, and values inherited around the cycle come out
    missing.

 5. Value Application: Each instance's `values`, `level`, `defer` and `final`
    entries are evaluated and applied to the slice of the matching level.

 6. Resolution and Export: Every property cell of every instance is resolved
    by a resolve.Engine, then the graph is exported.

Findings never abort a session on their own. The caller inspects
Result.Fatal to decide whether the output can be used.
*/
package builder
