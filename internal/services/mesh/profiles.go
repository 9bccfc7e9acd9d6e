package mesh

import (
	"meshguard/internal/domain"
	"meshguard/internal/pqc"
)

// PQCProfile is the algorithm pairing a device class should run. Smaller
// classes trade security margin for handshake size and battery.
type PQCProfile struct {
	KEM pqc.Algorithm `json:"kem"`
	Sig pqc.Algorithm `json:"sig"`
}

var classProfiles = map[domain.DeviceClass]PQCProfile{
	domain.ClassEdge:    {KEM: pqc.MLKEM512, Sig: pqc.MLDSA44},
	domain.ClassSensor:  {KEM: pqc.MLKEM512, Sig: pqc.MLDSA44},
	domain.ClassDrone:   {KEM: pqc.MLKEM768, Sig: pqc.MLDSA65},
	domain.ClassGateway: {KEM: pqc.MLKEM1024, Sig: pqc.MLDSA87},
	domain.ClassServer:  {KEM: pqc.MLKEM1024, Sig: pqc.MLDSA87},
}

// ProfileFor maps a device class to its PQC profile. Unknown classes get
// the drone/default middle tier.
func ProfileFor(class domain.DeviceClass) PQCProfile {
	if p, ok := classProfiles[class]; ok {
		return p
	}
	return PQCProfile{KEM: pqc.MLKEM768, Sig: pqc.MLDSA65}
}
