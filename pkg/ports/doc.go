/*
Package ports defines the driven ports (interfaces) for the Easel engine.

These interfaces decouple the interaction core from external implementations,
allowing the engine to work with various renderers, storage backends, and
session/diagram state sources.

# Key Interfaces

  - Renderer: repaints the scene after the interaction layer mutates it.
  - EditSource: resolves the currently open edit session (editability).
  - DiagramSource: resolves the active diagram kind and drilled deployment node.
  - SessionStore: persists edit sessions (memory, Redis, file).
  - DiagramLoader: loads diagram documents (e.g. from a YAML file).
  - DistributedLocker: coordinates session access across replicas.
*/
package ports
