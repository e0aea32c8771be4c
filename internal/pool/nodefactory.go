package pool

import (
	"context"
	"time"
)

// NodeFactory mints, parents and registers a single new member. It owns no
// mutable cluster state itself beyond what it is handed at construction;
// the Controller holds its mutex across every call.
type NodeFactory struct {
	cfg       *Config
	em        EntityManager
	allocator *MemberIDAllocator
}

// NewNodeFactory returns a NodeFactory bound to cfg's member specs/custom
// flags, em for entity creation and registration, and allocator for
// cluster_member_id assignment.
func NewNodeFactory(cfg *Config, em EntityManager, allocator *MemberIDAllocator) *NodeFactory {
	return &NodeFactory{cfg: cfg, em: em, allocator: allocator}
}

// AddNode creates one member at loc: ensure the allocator is initialized,
// build the flag map (custom child flags overridden by extraFlags then
// overlaid with cluster_member_id), pick a member spec, instantiate the
// child, mark its cluster sensors, register it, and append it to
// cluster.Members.
//
// Callers must hold the Controller's mutex; this is the same serialization
// point that guards MemberIDAllocator initialization.
func (f *NodeFactory) AddNode(ctx context.Context, cluster *Cluster, loc Location, extraFlags map[string]any) (*Member, error) {
	if err := f.allocator.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	clusterMemberID, err := f.allocator.Next(ctx)
	if err != nil {
		return nil, err
	}

	flags := make(map[string]any, len(f.cfg.CustomChildFlags)+len(extraFlags)+1)
	for k, v := range f.cfg.CustomChildFlags {
		flags[k] = v
	}
	for k, v := range extraFlags {
		flags[k] = v
	}
	flags[SensorClusterMemberID] = clusterMemberID

	spec, err := f.pickMemberSpec(cluster)
	if err != nil {
		return nil, err
	}

	entity, err := f.em.CreateChild(ctx, EntityRef(cluster.ID), *spec, loc, flags)
	if err != nil {
		return nil, err
	}

	if err := f.em.SetSensor(ctx, entity, SensorClusterMember, true); err != nil {
		return nil, err
	}
	if err := f.em.SetSensor(ctx, entity, SensorCluster, cluster.ID); err != nil {
		return nil, err
	}
	if err := f.em.SetSensor(ctx, entity, SensorClusterMemberID, clusterMemberID); err != nil {
		return nil, err
	}

	if err := f.em.Manage(ctx, entity); err != nil {
		return nil, err
	}

	member := &Member{
		ID:              entity,
		ClusterMemberID: clusterMemberID,
		CreationTime:    time.Now(),
		Locations:       []Location{loc},
		IsStartable:     true,
	}
	cluster.Members = append(cluster.Members, member)

	log.Debugf("cluster %s: added member %s (cluster_member_id=%d) at %s", cluster.ID, member.ID, clusterMemberID, loc)
	return member, nil
}

// pickMemberSpec chooses FirstMemberSpec when Members is empty, otherwise
// MemberSpec, falling back to the legacy factory if neither is configured,
// erroring with ErrNoMemberSpec if nothing is available.
func (f *NodeFactory) pickMemberSpec(cluster *Cluster) (*MemberSpec, error) {
	var spec *MemberSpec
	if len(cluster.Members) == 0 && f.cfg.FirstMemberSpec != nil {
		spec = f.cfg.FirstMemberSpec
	} else {
		spec = f.cfg.MemberSpec
	}

	if spec == nil && f.cfg.LegacyMemberSpecFactory != nil {
		spec = f.cfg.LegacyMemberSpecFactory()
	}
	if spec == nil {
		return nil, ErrNoMemberSpec
	}
	return spec, nil
}
