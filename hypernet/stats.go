package hypernet

import (
	"fmt"
	"strings"
)

// Stats returns a human-readable block of measurements of this
// network. The exact line set and wording are not part of the API;
// callers should not parse it.
func (n *HyperNetwork) Stats() string {
	memberCount := len(n.members)
	channelCount := n.NumChannels()
	memberships := n.NumChannelMemberships()

	onChainBytes := 0
	for _, channel := range n.channels {
		onChainBytes += channel.MinOnChainBytes()
	}

	fortuneSum := float64(0)
	fortuneMin := float64(0)
	receiptSum := float64(0)
	receiptMin := float64(0)
	for i, member := range n.members {
		fortune := float64(member.Fortune(n))
		receipt := float64(member.MaximumReceipt(n))
		fortuneSum += fortune
		receiptSum += receipt
		if i == 0 || fortune < fortuneMin {
			fortuneMin = fortune
		}
		if i == 0 || receipt < receiptMin {
			receiptMin = receipt
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Number of channels:\t\t\t\t%v\n", channelCount)
	fmt.Fprintf(&b, "Number of channel memberships:\t\t\t%v\n", memberships)
	fmt.Fprintf(&b, "Diameter:\t\t\t\t\t%v\n", n.Diameter())
	fmt.Fprintf(&b, "Number of channels per member:\t\t\t%v\n",
		float64(channelCount)/float64(memberCount))
	fmt.Fprintf(&b, "Avg. number of channel memberships per member:\t%v\n",
		float64(memberships)/float64(memberCount))
	fmt.Fprintf(&b, "Total amount of on-chain storage space req.:\t%v MB\n",
		float64(onChainBytes)/1000)
	fmt.Fprintf(&b, "Average fortune:\t\t\t\t%v €\n",
		fortuneSum/float64(memberCount)/1_000_000)
	fmt.Fprintf(&b, "Minimum fortune:\t\t\t\t%v €\n", fortuneMin/1_000_000)
	fmt.Fprintf(&b, "Average max. receipt:\t\t\t\t%v €\n",
		receiptSum/float64(memberCount)/1_000_000)
	fmt.Fprintf(&b, "Minimum max. receipt:\t\t\t\t%v €\n", receiptMin/1_000_000)
	fmt.Fprintf(&b, "Proper HPC proportion:\t\t\t\t%v\n",
		float64(n.NumProperHyperChannels())/float64(channelCount))
	return b.String()
}
