package pool

// Sensor key constants. The entity layer itself owns the typed sensor
// registry; these are the string keys the controller writes through
// EntityManager.SetSensor.
const (
	SensorSubLocations              = "sub_locations"
	SensorFailedSubLocations        = "failed_sub_locations"
	SensorQuarantineGroup           = "quarantine_group"
	SensorClusterOneAndAllMembersUp = "cluster_one_and_all_members_up"
	SensorServiceUp                 = "service_up"
	SensorServiceStateActual        = "service_state_actual"
	SensorEntityQuarantined         = "entity_quarantined"
	SensorClusterMemberID           = "cluster_member_id"
	SensorCluster                   = "cluster"
	SensorClusterMember             = "cluster_member"
	SensorNextClusterMemberID       = "next_cluster_member_id"
)
