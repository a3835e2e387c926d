package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetIncludeRules(c *gin.Context) (bool, error) {
	includeRules, err := strconv.ParseBool(c.DefaultQuery("includeRules", "true"))
	if err != nil {
		return false, err
	}
	return includeRules, nil
}

func GetLimitParam(c *gin.Context) (int, error) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		return 0, err
	}
	return limit, nil
}
