package pool

// RemovalStrategy picks one member of contenders to remove on a shrink by
// one, returning nil if none can be chosen. It must not mutate contenders.
type RemovalStrategy func(contenders []*Member) *Member

// DefaultRemovalStrategy chooses the newest stoppable member, falling back
// to the newest non-stoppable member if none are startable. A contender
// counts as newer than the current pick if its ClusterMemberID is larger
// or its CreationTime is later; ties keep the earlier contender. Both
// ClusterMemberID and CreationTime are considered so that members created
// before cluster_member_id was assigned are still ordered sensibly.
func DefaultRemovalStrategy(contenders []*Member) *Member {
	var (
		largestID  int64 = -1
		newestTime int64
		newest     *Member
	)

	for _, contender := range contenders {
		newer := contender.ClusterMemberID > largestID || contender.CreationTime.UnixNano() > newestTime
		newestIsStartable := newest != nil && newest.IsStartable

		if (contender.IsStartable && newer) || (!newestIsStartable && (contender.IsStartable || newer)) {
			newest = contender
			if contender.ClusterMemberID > largestID {
				largestID = contender.ClusterMemberID
			}
			newestTime = contender.CreationTime.UnixNano()
		}
	}

	return newest
}
