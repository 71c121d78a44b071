/*
Package domain contains the core domain models for the Easel interaction engine.

It defines the fundamental vocabulary shared by the scene graph, the interaction
state machine, and the mode managers: 2D geometry, target kinds, edit sessions,
and the outbound event hooks. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Point / Transform: 2D geometry and the coordinate-space mapping between
    screen space and scene space.
  - EditSession: the unit of editability; gestures that mutate the diagram are
    only honored while a session is open.
  - InteractionHooks: write-only notification callbacks published by the
    interaction core (selection changes, committed edges, gesture lifecycle).
*/
package domain
