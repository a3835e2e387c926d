// test/mock/ec2.go
package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/stretchr/testify/mock"
)

// MockEC2Client is a mock implementation of agent.EC2DescribeSecurityGroupsAPI
type MockEC2Client struct {
	mock.Mock
}

func (m *MockEC2Client) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	args := m.Called(ctx, params)
	if output := args.Get(0); output != nil {
		return output.(*ec2.DescribeSecurityGroupsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}
